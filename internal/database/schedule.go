package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Alias1177/numbersff/models"
)

// ReplaceSchedule swaps every game stored for season
func (db *DB) ReplaceSchedule(ctx context.Context, season int, games []models.Game) error {
	rows := make([][]any, 0, len(games))
	for _, g := range games {
		if g.Season != season {
			return fmt.Errorf("game %s belongs to season %d, not %d", g.GameID, g.Season, season)
		}
		rows = append(rows, []any{
			g.GameID, g.Season, g.Week, g.GameDay, g.GameTime, g.Weekday, g.HomeTeam, g.AwayTeam,
		})
	}
	return db.replace(ctx, replacement{
		table:     "schedule",
		where:     `season = $1`,
		whereArgs: []any{season},
		columns:   []string{"game_id", "season", "week", "gameday", "gametime", "weekday", "home_team", "away_team"},
		rows:      rows,
	})
}

// CurrentSeasonWeek returns the earliest season/week with a game on or after today.
// today is a YYYY-MM-DD game day. It returns nil when the schedule has nothing left.
func (db *DB) CurrentSeasonWeek(ctx context.Context, today string) (*models.SeasonWeek, error) {
	var sw models.SeasonWeek
	err := db.queryRow(ctx, `
		SELECT season, week
		FROM schedule
		WHERE gameday >= $1
		ORDER BY gameday, season, week
		LIMIT 1
	`, today).Scan(&sw.Season, &sw.Week)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query current season week: %w", err)
	}
	return &sw, nil
}
