package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alias1177/numbersff/models"
)

var weeklyStatsColumns = append([]string{
	"season", "week", "player_id", "player_name", "position", "headshot_url",
	"team", "opponent", "home_away", "age", "depth_ranking", "fantasy_points_ppr",
}, statNames(models.TrackedStats, "")...)

// ReplaceWeeklyStats swaps the actual stat lines stored for sw
func (db *DB) ReplaceWeeklyStats(ctx context.Context, sw models.SeasonWeek, stats []models.WeeklyStats) error {
	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		if err := checkKey(sw, s.PlayerWeek); err != nil {
			return err
		}
		row := []any{
			s.Season, s.Week, s.PlayerID, s.PlayerName, s.Position, s.HeadshotURL,
			s.Team, s.Opponent, s.HomeAway, nullFloat(s.Age), nullInt(s.DepthRanking), nullFloat(s.FantasyPointsPPR),
		}
		rows = append(rows, append(row, statValues(s.Stats, models.TrackedStats)...))
	}
	return db.replaceSeasonWeek(ctx, "weekly_stats", sw, weeklyStatsColumns, rows)
}

// GetWeeklyStats returns the actual stat lines for sw
func (db *DB) GetWeeklyStats(ctx context.Context, sw models.SeasonWeek) ([]models.WeeklyStats, error) {
	return db.selectWeeklyStats(ctx,
		`WHERE season = $1 AND week = $2 ORDER BY player_id`,
		sw.Season, sw.Week)
}

// GetRecentWeeklyStats returns stat lines from the weeks before sw, reaching
// back into the previous season. Newest weeks come first.
func (db *DB) GetRecentWeeklyStats(ctx context.Context, sw models.SeasonWeek) ([]models.WeeklyStats, error) {
	return db.selectWeeklyStats(ctx,
		`WHERE (season = $1 AND week < $2) OR season = $3 ORDER BY season DESC, week DESC, player_id`,
		sw.Season, sw.Week, sw.Season-1)
}

func (db *DB) selectWeeklyStats(ctx context.Context, clause string, args ...any) ([]models.WeeklyStats, error) {
	rows, err := db.query(ctx,
		`SELECT `+strings.Join(weeklyStatsColumns, ", ")+` FROM weekly_stats `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query weekly_stats: %w", err)
	}
	defer rows.Close()

	var out []models.WeeklyStats
	for rows.Next() {
		var s models.WeeklyStats
		dests := []any{
			&s.Season, &s.Week, &s.PlayerID, &s.PlayerName, &s.Position, &s.HeadshotURL,
			&s.Team, &s.Opponent, &s.HomeAway, &s.Age, &s.DepthRanking, &s.FantasyPointsPPR,
		}
		dests = append(dests, statDests(&s.Stats, models.TrackedStats)...)
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan weekly_stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
