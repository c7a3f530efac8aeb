// Package predict holds the in-process stand-in for the prediction model.
package predict

import (
	"context"
	"fmt"

	"github.com/Alias1177/numbersff/models"
)

// DefaultWindow is how many of a player's recent games are averaged
const DefaultWindow = 4

// HistoryStore returns played weeks before a target week, newest first
type HistoryStore interface {
	GetRecentWeeklyStats(ctx context.Context, sw models.SeasonWeek) ([]models.WeeklyStats, error)
}

// Baseline predicts each stat as the mean of the player's last Window games.
// Players without history get an empty line.
type Baseline struct {
	store  HistoryStore
	window int
}

// NewBaseline creates a trailing mean regressor
func NewBaseline(store HistoryStore, window int) *Baseline {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Baseline{store: store, window: window}
}

var _ models.Regressor = (*Baseline)(nil)

// Predict implements models.Regressor
func (b *Baseline) Predict(ctx context.Context, target models.SeasonWeek, roster []models.RosterEntry) ([]models.StatLine, error) {
	history, err := b.store.GetRecentWeeklyStats(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", target, err)
	}

	byPlayer := make(map[string][]models.StatLine)
	for _, h := range history {
		if len(byPlayer[h.PlayerID]) < b.window {
			byPlayer[h.PlayerID] = append(byPlayer[h.PlayerID], h.Stats)
		}
	}

	lines := make([]models.StatLine, len(roster))
	for i, r := range roster {
		lines[i] = TrailingMean(byPlayer[r.PlayerID])
	}
	return lines, nil
}

// TrailingMean averages every scored stat over games, nulls as zero.
// No games gives an empty line.
func TrailingMean(games []models.StatLine) models.StatLine {
	var out models.StatLine
	if len(games) == 0 {
		return out
	}
	n := float64(len(games))
	for _, stat := range models.ScoredStats {
		sum := 0.0
		for _, g := range games {
			sum += g.Value(stat)
		}
		out.Set(stat, models.Float(sum/n))
	}
	return out
}
