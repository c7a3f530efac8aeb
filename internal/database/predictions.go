package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alias1177/numbersff/models"
)

var predictionColumns = append([]string{
	"season", "week", "player_id", "player_name", "team", "opponent", "position",
}, statNames(models.ScoredStats, "")...)

// ReplacePredictions swaps the raw predicted stat lines stored for sw
func (db *DB) ReplacePredictions(ctx context.Context, sw models.SeasonWeek, preds []models.PredictionRecord) error {
	rows := make([][]any, 0, len(preds))
	for _, p := range preds {
		if err := checkKey(sw, p.PlayerWeek); err != nil {
			return err
		}
		row := []any{p.Season, p.Week, p.PlayerID, p.PlayerName, p.Team, p.Opponent, p.Position}
		rows = append(rows, append(row, statValues(p.Stats, models.ScoredStats)...))
	}
	return db.replaceSeasonWeek(ctx, "weekly_predictions_base", sw, predictionColumns, rows)
}

// GetPredictions returns the unscored predicted stat lines for sw
func (db *DB) GetPredictions(ctx context.Context, sw models.SeasonWeek) ([]models.PredictionRecord, error) {
	rows, err := db.query(ctx, `
		SELECT `+strings.Join(predictionColumns, ", ")+`
		FROM weekly_predictions_base
		WHERE season = $1 AND week = $2
		ORDER BY player_id
	`, sw.Season, sw.Week)
	if err != nil {
		return nil, fmt.Errorf("query weekly_predictions_base: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		dests := append([]any{
			&p.Season, &p.Week, &p.PlayerID, &p.PlayerName, &p.Team, &p.Opponent, &p.Position,
		}, statDests(&p.Stats, models.ScoredStats)...)
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan weekly_predictions_base: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceFantasyPoints swaps one ruleset's fantasy points for sw
func (db *DB) ReplaceFantasyPoints(ctx context.Context, table string, sw models.SeasonWeek, points []models.FantasyPointsRow) error {
	rows := make([][]any, 0, len(points))
	for _, fp := range points {
		if err := checkKey(sw, fp.PlayerWeek); err != nil {
			return err
		}
		rows = append(rows, []any{fp.Season, fp.Week, fp.PlayerID, fp.FantasyPoints})
	}
	return db.replaceSeasonWeek(ctx, table, sw, []string{"season", "week", "player_id", "fantasy_points"}, rows)
}

// GetRankedPredictions joins the predicted lines for sw with a ruleset's fantasy
// points, highest first. A limit of zero returns every row.
func (db *DB) GetRankedPredictions(ctx context.Context, table string, sw models.SeasonWeek, limit int) ([]models.PredictionRecord, error) {
	cols := make([]string, len(predictionColumns))
	for i, c := range predictionColumns {
		cols[i] = "b." + c
	}
	query := `
		SELECT ` + strings.Join(cols, ", ") + `, f.fantasy_points
		FROM weekly_predictions_base b
		JOIN ` + table + ` f
			ON f.season = b.season AND f.week = b.week AND f.player_id = b.player_id
		WHERE b.season = $1 AND b.week = $2
		ORDER BY f.fantasy_points DESC, b.player_id`
	args := []any{sw.Season, sw.Week}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		dests := append([]any{
			&p.Season, &p.Week, &p.PlayerID, &p.PlayerName, &p.Team, &p.Opponent, &p.Position,
		}, statDests(&p.Stats, models.ScoredStats)...)
		dests = append(dests, &p.Stats.FantasyPoints)
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
