package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Alias1177/numbersff/models"
)

var diffColumns = func() []string {
	cols := []string{"season", "week", "player_id", "player_name", "team", "opponent", "position"}
	for _, stat := range models.TrackedStats {
		cols = append(cols, string(stat), string(stat)+"_actual", string(stat)+"_diff")
	}
	return cols
}()

// ReplacePredictionDiffs swaps the reconciled records stored for sw
func (db *DB) ReplacePredictionDiffs(ctx context.Context, sw models.SeasonWeek, records []models.AccuracyRecord) error {
	rep, err := diffsReplacement(sw, records)
	if err != nil {
		return err
	}
	return db.replace(ctx, rep)
}

// ReplaceAccuracy swaps the summary metric and the reconciled records for sw
// in one transaction, so a failed write leaves the previous pair in place.
func (db *DB) ReplaceAccuracy(ctx context.Context, sw models.SeasonWeek, records []models.AccuracyRecord, m models.AccuracyMetric) error {
	if m.Season != sw.Season || m.Week != sw.Week {
		return fmt.Errorf("metric for %d/%d does not belong to %s", m.Season, m.Week, sw)
	}
	diffs, err := diffsReplacement(sw, records)
	if err != nil {
		return err
	}
	return db.replace(ctx, metricReplacement(m), diffs)
}

func diffsReplacement(sw models.SeasonWeek, records []models.AccuracyRecord) (replacement, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		if err := checkKey(sw, r.PlayerWeek); err != nil {
			return replacement{}, err
		}
		row := []any{r.Season, r.Week, r.PlayerID, r.PlayerName, r.Team, r.Opponent, r.Position}
		for _, stat := range models.TrackedStats {
			row = append(row, nullFloat(r.Predicted.Get(stat)), nullFloat(r.Actual.Get(stat)), r.Diff(stat))
		}
		rows = append(rows, row)
	}
	return seasonWeekReplacement("prediction_diffs", sw, diffColumns, rows), nil
}

// GetPredictionDiffs returns the reconciled records for sw
func (db *DB) GetPredictionDiffs(ctx context.Context, sw models.SeasonWeek) ([]models.AccuracyRecord, error) {
	rows, err := db.query(ctx, `
		SELECT `+strings.Join(diffColumns, ", ")+`
		FROM prediction_diffs
		WHERE season = $1 AND week = $2
		ORDER BY player_id
	`, sw.Season, sw.Week)
	if err != nil {
		return nil, fmt.Errorf("query prediction_diffs: %w", err)
	}
	defer rows.Close()

	out := []models.AccuracyRecord{}
	for rows.Next() {
		r := models.AccuracyRecord{Diffs: make(map[models.Stat]float64, len(models.TrackedStats))}
		diffs := make([]sql.NullFloat64, len(models.TrackedStats))
		dests := []any{&r.Season, &r.Week, &r.PlayerID, &r.PlayerName, &r.Team, &r.Opponent, &r.Position}
		for i, stat := range models.TrackedStats {
			dests = append(dests, r.Predicted.Field(stat), r.Actual.Field(stat), &diffs[i])
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan prediction_diffs: %w", err)
		}
		for i, stat := range models.TrackedStats {
			r.Diffs[stat] = diffs[i].Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CompletedWeeks lists every season/week that has reconciled records
func (db *DB) CompletedWeeks(ctx context.Context) ([]models.SeasonWeek, error) {
	rows, err := db.query(ctx, `
		SELECT DISTINCT season, week
		FROM prediction_diffs
		ORDER BY season, week
	`)
	if err != nil {
		return nil, fmt.Errorf("query completed weeks: %w", err)
	}
	defer rows.Close()

	weeks := []models.SeasonWeek{}
	for rows.Next() {
		var sw models.SeasonWeek
		if err := rows.Scan(&sw.Season, &sw.Week); err != nil {
			return nil, fmt.Errorf("scan completed weeks: %w", err)
		}
		weeks = append(weeks, sw)
	}
	return weeks, rows.Err()
}

// ReplaceAccuracyMetric stores the summary metric for its season/week
func (db *DB) ReplaceAccuracyMetric(ctx context.Context, m models.AccuracyMetric) error {
	return db.replace(ctx, metricReplacement(m))
}

func metricReplacement(m models.AccuracyMetric) replacement {
	sw := models.SeasonWeek{Season: m.Season, Week: m.Week}
	return seasonWeekReplacement("accuracy_metrics", sw,
		[]string{"season", "week", "stat", "mae", "mse", "rmse", "r_squared", "sample_size"},
		[][]any{{
			m.Season, m.Week, string(m.Stat),
			nullFloat(m.MAE), nullFloat(m.MSE), nullFloat(m.RMSE), nullFloat(m.RSquared),
			m.Count,
		}})
}

// GetAccuracyMetric returns the summary metric for sw, or nil when none exists
func (db *DB) GetAccuracyMetric(ctx context.Context, sw models.SeasonWeek) (*models.AccuracyMetric, error) {
	var (
		m    models.AccuracyMetric
		stat string
	)
	err := db.queryRow(ctx, `
		SELECT season, week, stat, mae, mse, rmse, r_squared, sample_size
		FROM accuracy_metrics
		WHERE season = $1 AND week = $2
	`, sw.Season, sw.Week).Scan(
		&m.Season, &m.Week, &stat, &m.MAE, &m.MSE, &m.RMSE, &m.RSquared, &m.Count,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No metric for this week
		}
		return nil, fmt.Errorf("query accuracy_metrics: %w", err)
	}
	m.Stat = models.Stat(stat)
	return &m, nil
}
