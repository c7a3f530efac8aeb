// Package accuracy reconciles predicted stat lines against actual box scores
// and summarises the error.
package accuracy

import (
	"github.com/Alias1177/numbersff/internal/scoring"
	"github.com/Alias1177/numbersff/models"
)

// Reconcile pairs one prediction with the actual line for the same PlayerWeek.
// Actual fantasy points are scored with pc so both sides use the same ruleset.
// A prediction that was never scored is scored with pc as well.
func Reconcile(pc scoring.PointsConfig, pred models.PredictionRecord, actual models.WeeklyStats) models.AccuracyRecord {
	predicted := pred.Stats
	if predicted.FantasyPoints == nil {
		predicted.FantasyPoints = models.Float(scoring.Compute(pc, predicted))
	}
	observed := actual.Stats
	observed.FantasyPoints = models.Float(scoring.Compute(pc, observed))

	diffs := make(map[models.Stat]float64, len(models.TrackedStats))
	for _, stat := range models.TrackedStats {
		diffs[stat] = observed.Value(stat) - predicted.Value(stat)
	}

	return models.AccuracyRecord{
		PlayerWeek: pred.PlayerWeek,
		PlayerName: pred.PlayerName,
		Team:       pred.Team,
		Opponent:   pred.Opponent,
		Position:   pred.Position,
		Predicted:  predicted,
		Actual:     observed,
		Diffs:      diffs,
	}
}

// ReconcileAll inner-joins predictions and actuals on PlayerWeek.
// Predictions without an actual line (player did not record stats) are dropped,
// which biases the population towards players who took the field.
// Output follows the order of preds.
func ReconcileAll(pc scoring.PointsConfig, preds []models.PredictionRecord, actuals []models.WeeklyStats) []models.AccuracyRecord {
	byKey := make(map[models.PlayerWeek]models.WeeklyStats, len(actuals))
	for _, a := range actuals {
		byKey[a.PlayerWeek] = a
	}

	records := make([]models.AccuracyRecord, 0, len(preds))
	for _, p := range preds {
		a, ok := byKey[p.PlayerWeek]
		if !ok {
			continue
		}
		records = append(records, Reconcile(pc, p, a))
	}
	return records
}
