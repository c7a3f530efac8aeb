package scoring

import (
	"github.com/Alias1177/numbersff/models"
)

// Compute returns the fantasy points for stats under pc.
// Missing values count as zero; yardage bonuses are flat and awarded once.
func Compute(pc PointsConfig, stats models.StatLine) float64 {
	total := 0.0
	for _, stat := range models.ScoredStats {
		total += stats.Value(stat) * pc.Multiplier(stat)
	}
	for _, stat := range bonusStats {
		if b, ok := pc.Bonus(stat); ok && stats.Value(stat) >= b.Threshold {
			total += b.Points
		}
	}
	return total
}

// Score returns a copy of rec with Stats.FantasyPoints set under pc.
func Score(pc PointsConfig, rec models.PredictionRecord) models.PredictionRecord {
	rec.Stats.FantasyPoints = models.Float(Compute(pc, rec.Stats))
	return rec
}

// ScoreAll computes one FantasyPoints row per prediction.
func ScoreAll(pc PointsConfig, preds []models.PredictionRecord) []models.FantasyPointsRow {
	out := make([]models.FantasyPointsRow, 0, len(preds))
	for _, p := range preds {
		out = append(out, models.FantasyPointsRow{
			PlayerWeek:    p.PlayerWeek,
			FantasyPoints: Compute(pc, p.Stats),
		})
	}
	return out
}
