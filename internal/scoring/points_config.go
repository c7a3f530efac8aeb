// Package scoring converts raw stat lines into league-specific fantasy points.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/numbersff/models"
)

// ErrInvalidConfig is wrapped by every PointsConfig construction failure.
var ErrInvalidConfig = errors.New("invalid points config")

// Bonus is a flat award granted once when a yardage stat reaches Threshold.
type Bonus struct {
	Threshold float64 `yaml:"threshold"`
	Points    float64 `yaml:"points"`
}

// bonusStats are the only stats a yardage bonus may be attached to.
var bonusStats = []models.Stat{models.PassingYards, models.ReceivingYards, models.RushingYards}

// PointsConfig holds per-stat multipliers and optional yardage bonuses.
// It is immutable once built; use NewPointsConfig.
type PointsConfig struct {
	multipliers map[models.Stat]float64
	bonuses     map[models.Stat]Bonus
}

// NewPointsConfig validates and copies the supplied weights.
// Every scored stat needs a finite multiplier.
func NewPointsConfig(multipliers map[models.Stat]float64, bonuses map[models.Stat]Bonus) (PointsConfig, error) {
	pc := PointsConfig{
		multipliers: make(map[models.Stat]float64, len(models.ScoredStats)),
		bonuses:     make(map[models.Stat]Bonus, len(bonuses)),
	}

	for stat := range multipliers {
		if !stat.IsScored() {
			return PointsConfig{}, fmt.Errorf("%w: unknown stat %q", ErrInvalidConfig, stat)
		}
	}
	for _, stat := range models.ScoredStats {
		m, ok := multipliers[stat]
		if !ok {
			return PointsConfig{}, fmt.Errorf("%w: missing multiplier for %s", ErrInvalidConfig, stat)
		}
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return PointsConfig{}, fmt.Errorf("%w: multiplier for %s is not finite", ErrInvalidConfig, stat)
		}
		pc.multipliers[stat] = m
	}

	for stat, b := range bonuses {
		if !isBonusStat(stat) {
			return PointsConfig{}, fmt.Errorf("%w: bonus not supported for %s", ErrInvalidConfig, stat)
		}
		if math.IsNaN(b.Threshold) || math.IsInf(b.Threshold, 0) || b.Threshold <= 0 {
			return PointsConfig{}, fmt.Errorf("%w: bonus threshold for %s must be positive", ErrInvalidConfig, stat)
		}
		if math.IsNaN(b.Points) || math.IsInf(b.Points, 0) {
			return PointsConfig{}, fmt.Errorf("%w: bonus points for %s are not finite", ErrInvalidConfig, stat)
		}
		pc.bonuses[stat] = b
	}

	return pc, nil
}

// MustPointsConfig is NewPointsConfig for package-level built-ins.
func MustPointsConfig(multipliers map[models.Stat]float64, bonuses map[models.Stat]Bonus) PointsConfig {
	pc, err := NewPointsConfig(multipliers, bonuses)
	if err != nil {
		panic(err)
	}
	return pc
}

// Multiplier returns the points per unit of stat. Unscored stats return 0.
func (pc PointsConfig) Multiplier(stat models.Stat) float64 {
	return pc.multipliers[stat]
}

// Bonus returns the bonus configured for stat, if any.
func (pc PointsConfig) Bonus(stat models.Stat) (Bonus, bool) {
	b, ok := pc.bonuses[stat]
	return b, ok
}

func isBonusStat(stat models.Stat) bool {
	for _, s := range bonusStats {
		if s == stat {
			return true
		}
	}
	return false
}

// STANDARD_PPR awards a full point per reception and a point per 100 passing yards.
var STANDARD_PPR = MustPointsConfig(map[models.Stat]float64{
	models.PassingYards:            0.01,
	models.PassingTDs:              4,
	models.Interceptions:           -2,
	models.Fumbles:                 -2,
	models.RushingYards:            0.1,
	models.RushingTDs:              6,
	models.Rushing2PtConversions:   2,
	models.Receptions:              1,
	models.ReceivingYards:          0.1,
	models.ReceivingTDs:            6,
	models.Receiving2PtConversions: 2,
	models.Passing2PtConversions:   2,
}, nil)

// STANDARD_HALF_PPR awards half a point per reception.
var STANDARD_HALF_PPR = MustPointsConfig(map[models.Stat]float64{
	models.PassingYards:            0.01,
	models.PassingTDs:              4,
	models.Interceptions:           -2,
	models.Fumbles:                 -2,
	models.RushingYards:            0.1,
	models.RushingTDs:              6,
	models.Rushing2PtConversions:   2,
	models.Receptions:              0.5,
	models.ReceivingYards:          0.1,
	models.ReceivingTDs:            6,
	models.Receiving2PtConversions: 2,
	models.Passing2PtConversions:   2,
}, nil)

// DK_DFS follows DraftKings classic NFL scoring, including the 300/100/100 yard bonuses.
var DK_DFS = MustPointsConfig(map[models.Stat]float64{
	models.PassingYards:            0.04,
	models.PassingTDs:              4,
	models.Interceptions:           -1,
	models.Fumbles:                 -1,
	models.RushingYards:            0.1,
	models.RushingTDs:              6,
	models.Rushing2PtConversions:   2,
	models.Receptions:              1,
	models.ReceivingYards:          0.1,
	models.ReceivingTDs:            6,
	models.Receiving2PtConversions: 2,
	models.Passing2PtConversions:   2,
}, map[models.Stat]Bonus{
	models.PassingYards:   {Threshold: 300, Points: 3},
	models.RushingYards:   {Threshold: 100, Points: 3},
	models.ReceivingYards: {Threshold: 100, Points: 3},
})
