package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alias1177/numbersff/models"
)

var rosterColumns = []string{
	"season", "week", "player_id", "player_name", "position", "status",
	"team", "opponent", "age", "depth_ranking",
}

// ReplaceRoster swaps the weekly roster stored for sw
func (db *DB) ReplaceRoster(ctx context.Context, sw models.SeasonWeek, roster []models.RosterEntry) error {
	rows := make([][]any, 0, len(roster))
	for _, r := range roster {
		if err := checkKey(sw, r.PlayerWeek); err != nil {
			return err
		}
		rows = append(rows, []any{
			r.Season, r.Week, r.PlayerID, r.PlayerName, r.Position, r.Status,
			r.Team, r.Opponent, nullFloat(r.Age), nullInt(r.DepthRanking),
		})
	}
	return db.replaceSeasonWeek(ctx, "weekly_roster", sw, rosterColumns, rows)
}

// GetRoster returns the weekly roster for sw
func (db *DB) GetRoster(ctx context.Context, sw models.SeasonWeek) ([]models.RosterEntry, error) {
	rows, err := db.query(ctx, `
		SELECT `+strings.Join(rosterColumns, ", ")+`
		FROM weekly_roster
		WHERE season = $1 AND week = $2
		ORDER BY team, position, player_id
	`, sw.Season, sw.Week)
	if err != nil {
		return nil, fmt.Errorf("query weekly_roster: %w", err)
	}
	defer rows.Close()

	var out []models.RosterEntry
	for rows.Next() {
		var r models.RosterEntry
		if err := rows.Scan(
			&r.Season, &r.Week, &r.PlayerID, &r.PlayerName, &r.Position, &r.Status,
			&r.Team, &r.Opponent, &r.Age, &r.DepthRanking,
		); err != nil {
			return nil, fmt.Errorf("scan weekly_roster: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
