package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/Alias1177/numbersff/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		config   PointsConfig
		stats    models.StatLine
		expected float64
	}{
		{
			name:     "all null line scores zero",
			config:   STANDARD_PPR,
			stats:    models.StatLine{},
			expected: 0,
		},
		{
			name:   "half ppr receiver",
			config: STANDARD_HALF_PPR,
			stats: models.StatLine{
				Receptions:     models.Float(5),
				ReceivingYards: models.Float(60),
				ReceivingTDs:   models.Float(1),
			},
			expected: 14.5,
		},
		{
			name:   "full ppr receiver",
			config: STANDARD_PPR,
			stats: models.StatLine{
				Receptions:     models.Float(5),
				ReceivingYards: models.Float(60),
				ReceivingTDs:   models.Float(1),
			},
			expected: 17,
		},
		{
			name:   "quarterback with turnovers",
			config: STANDARD_PPR,
			stats: models.StatLine{
				PassingYards:  models.Float(250),
				PassingTDs:    models.Float(2),
				Interceptions: models.Float(1),
				Fumbles:       models.Float(1),
				RushingYards:  models.Float(20),
			},
			expected: 2.5 + 8 - 2 - 2 + 2,
		},
		{
			name:   "half ppr passing yards score a point per hundred",
			config: STANDARD_HALF_PPR,
			stats: models.StatLine{
				PassingYards: models.Float(300),
			},
			expected: 3,
		},
		{
			name:   "fantasy points field is ignored",
			config: STANDARD_PPR,
			stats: models.StatLine{
				FantasyPoints: models.Float(99),
				RushingTDs:    models.Float(1),
			},
			expected: 6,
		},
		{
			name:   "dk passing bonus at threshold",
			config: DK_DFS,
			stats: models.StatLine{
				PassingYards: models.Float(300),
			},
			expected: 12 + 3,
		},
		{
			name:   "dk passing bonus just below threshold",
			config: DK_DFS,
			stats: models.StatLine{
				PassingYards: models.Float(299),
			},
			expected: 11.96,
		},
		{
			name:   "dk rushing and receiving bonuses stack",
			config: DK_DFS,
			stats: models.StatLine{
				RushingYards:   models.Float(120),
				ReceivingYards: models.Float(100),
			},
			expected: 12 + 3 + 10 + 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compute(tt.config, tt.stats)
			if !almostEqual(result, tt.expected) {
				t.Errorf("Compute() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestComputeIsLinearWithoutBonuses(t *testing.T) {
	a := models.StatLine{
		PassingYards: models.Float(180),
		PassingTDs:   models.Float(1),
		Receptions:   models.Float(3),
	}
	b := models.StatLine{
		RushingYards:  models.Float(45),
		Interceptions: models.Float(2),
		Receptions:    models.Float(4),
	}
	var sum models.StatLine
	for _, stat := range models.ScoredStats {
		v := a.Value(stat) + b.Value(stat)
		sum.Set(stat, &v)
	}

	for _, pc := range []PointsConfig{STANDARD_PPR, STANDARD_HALF_PPR} {
		got := Compute(pc, sum)
		want := Compute(pc, a) + Compute(pc, b)
		if !almostEqual(got, want) {
			t.Errorf("Compute(a+b) = %v, want %v", got, want)
		}
	}
}

func TestScoreAll(t *testing.T) {
	preds := []models.PredictionRecord{
		{PlayerWeek: models.PlayerWeek{Season: 2024, Week: 3, PlayerID: "00-001"}, Stats: models.StatLine{RushingTDs: models.Float(2)}},
		{PlayerWeek: models.PlayerWeek{Season: 2024, Week: 3, PlayerID: "00-002"}, Stats: models.StatLine{}},
	}

	rows := ScoreAll(STANDARD_PPR, preds)
	if len(rows) != 2 {
		t.Fatalf("ScoreAll() returned %d rows, want 2", len(rows))
	}
	if rows[0].PlayerID != "00-001" || rows[0].FantasyPoints != 12 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].FantasyPoints != 0 {
		t.Errorf("rows[1].FantasyPoints = %v, want 0", rows[1].FantasyPoints)
	}

	scored := Score(STANDARD_PPR, preds[0])
	if scored.PredictedFantasyPoints() == nil || *scored.PredictedFantasyPoints() != 12 {
		t.Errorf("Score() fantasy points = %v, want 12", scored.PredictedFantasyPoints())
	}
	if preds[0].Stats.FantasyPoints != nil {
		t.Error("Score() mutated its input")
	}
}

func fullMultipliers() map[models.Stat]float64 {
	m := make(map[models.Stat]float64, len(models.ScoredStats))
	for _, stat := range models.ScoredStats {
		m[stat] = 1
	}
	return m
}

func TestNewPointsConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m map[models.Stat]float64)
		bonuses map[models.Stat]Bonus
		wantErr bool
	}{
		{name: "complete", mutate: func(map[models.Stat]float64) {}},
		{
			name:    "missing multiplier",
			mutate:  func(m map[models.Stat]float64) { delete(m, models.Receptions) },
			wantErr: true,
		},
		{
			name:    "unknown stat",
			mutate:  func(m map[models.Stat]float64) { m["sacks"] = 1 },
			wantErr: true,
		},
		{
			name:    "fantasy points is not scored",
			mutate:  func(m map[models.Stat]float64) { m[models.FantasyPoints] = 1 },
			wantErr: true,
		},
		{
			name:    "nan multiplier",
			mutate:  func(m map[models.Stat]float64) { m[models.PassingTDs] = math.NaN() },
			wantErr: true,
		},
		{
			name:    "infinite multiplier",
			mutate:  func(m map[models.Stat]float64) { m[models.PassingTDs] = math.Inf(1) },
			wantErr: true,
		},
		{
			name:    "bonus on non-yardage stat",
			mutate:  func(map[models.Stat]float64) {},
			bonuses: map[models.Stat]Bonus{models.Receptions: {Threshold: 10, Points: 1}},
			wantErr: true,
		},
		{
			name:    "zero bonus threshold",
			mutate:  func(map[models.Stat]float64) {},
			bonuses: map[models.Stat]Bonus{models.RushingYards: {Threshold: 0, Points: 1}},
			wantErr: true,
		},
		{
			name:    "valid bonus",
			mutate:  func(map[models.Stat]float64) {},
			bonuses: map[models.Stat]Bonus{models.RushingYards: {Threshold: 100, Points: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fullMultipliers()
			tt.mutate(m)
			_, err := NewPointsConfig(m, tt.bonuses)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("NewPointsConfig() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewPointsConfig() unexpected error: %v", err)
			}
		})
	}
}

func TestPointsConfigIsCopied(t *testing.T) {
	m := fullMultipliers()
	pc, err := NewPointsConfig(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	m[models.PassingTDs] = 100
	if pc.Multiplier(models.PassingTDs) != 1 {
		t.Errorf("config changed after caller mutated its map")
	}
}
