package models

import (
	"time"
)

// PlayerWeek is the composite key shared by every per-player weekly record.
type PlayerWeek struct {
	Season   int    `json:"season"`
	Week     int    `json:"week"`
	PlayerID string `json:"player_id"`
}

// SeasonWeek returns the season/week part of the key.
func (k PlayerWeek) SeasonWeek() SeasonWeek {
	return SeasonWeek{Season: k.Season, Week: k.Week}
}

// PredictionRecord is a predicted stat line for one player.
// Stats.FantasyPoints holds the predicted fantasy points for a ruleset.
type PredictionRecord struct {
	PlayerWeek
	PlayerName string   `json:"player_name"`
	Team       string   `json:"team"`
	Opponent   string   `json:"opponent"`
	Position   string   `json:"position"`
	Stats      StatLine `json:"stats"`
}

// PredictedFantasyPoints returns the scored prediction, nil when not yet scored.
func (p PredictionRecord) PredictedFantasyPoints() *float64 {
	return p.Stats.FantasyPoints
}

// RankedPrediction is one row of a ruleset's prediction ranking.
type RankedPrediction struct {
	PredictionRecord
	PredictedFantasyPoints float64 `json:"predicted_fantasy_points"`
}

// WeeklyStats is the actual box score pulled from the stats provider.
type WeeklyStats struct {
	PlayerWeek
	PlayerName   string   `json:"player_name"`
	Position     string   `json:"position"`
	HeadshotURL  string   `json:"headshot_url,omitempty"`
	Team         string   `json:"team"`
	Opponent     string   `json:"opponent"`
	HomeAway     string   `json:"home_away"`
	Age          *float64 `json:"age"`
	DepthRanking *int     `json:"depth_ranking"`
	Stats        StatLine `json:"stats"`
	// FantasyPointsPPR is the provider's own PPR total, kept for reference only.
	FantasyPointsPPR *float64 `json:"fantasy_points_ppr"`
}

// FantasyPointsRow is one row of a per-ruleset fantasy points table.
type FantasyPointsRow struct {
	PlayerWeek
	FantasyPoints float64 `json:"fantasy_points"`
}

// AccuracyRecord is the reconciliation of one prediction against its actual.
// Diffs always hold actual - predicted. Actual.FantasyPoints is re-scored with
// the prediction's ruleset, so it can differ from the provider's weekly_stats value.
type AccuracyRecord struct {
	PlayerWeek
	PlayerName string           `json:"player_name"`
	Team       string           `json:"team"`
	Opponent   string           `json:"opponent"`
	Position   string           `json:"position"`
	Predicted  StatLine         `json:"predicted"`
	Actual     StatLine         `json:"actual"`
	Diffs      map[Stat]float64 `json:"differences"`
}

// Diff returns actual - predicted for stat.
func (r AccuracyRecord) Diff(stat Stat) float64 {
	return r.Diffs[stat]
}

// Metrics holds error statistics for one stat over a population.
// A nil value is the "undefined" marker and serialises as null.
type Metrics struct {
	MAE      *float64 `json:"MAE"`
	MSE      *float64 `json:"MSE"`
	RMSE     *float64 `json:"RMSE"`
	RSquared *float64 `json:"R_squared"`
	Count    int      `json:"count"`
}

// AccuracyMetric is the persisted fantasy_points summary for a season/week.
type AccuracyMetric struct {
	Season int  `json:"season"`
	Week   int  `json:"week"`
	Stat   Stat `json:"stat"`
	Metrics
}

// PredictionAccuracyReport combines per-player records with a per-stat breakdown.
type PredictionAccuracyReport struct {
	Season            int              `json:"season"`
	Week              int              `json:"week"`
	IndividualRecords []AccuracyRecord `json:"individual_records"`
	OverallMetrics    map[Stat]Metrics `json:"overall_metrics"`
}

// Game is one scheduled matchup.
type Game struct {
	GameID   string `json:"game_id"`
	Season   int    `json:"season"`
	Week     int    `json:"week"`
	GameDay  string `json:"gameday"` // YYYY-MM-DD
	GameTime string `json:"gametime"`
	Weekday  string `json:"weekday"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// Opponent returns the other team in the game, or "" when team did not play in it.
func (g Game) Opponent(team string) string {
	switch team {
	case g.HomeTeam:
		return g.AwayTeam
	case g.AwayTeam:
		return g.HomeTeam
	}
	return ""
}

// RosterEntry is one active player on a weekly roster.
type RosterEntry struct {
	PlayerWeek
	PlayerName   string   `json:"player_name"`
	Position     string   `json:"position"`
	Status       string   `json:"status"`
	Team         string   `json:"team"`
	Opponent     string   `json:"opponent"`
	Age          *float64 `json:"age"`
	DepthRanking *int     `json:"depth_ranking"`
}

// Job status constants
const (
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// JobRun records one pipeline job execution.
type JobRun struct {
	JobID       string     `json:"job_id"`
	Job         string     `json:"job"`
	Status      string     `json:"status"`
	Season      int        `json:"season"`
	Week        int        `json:"week"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// RulesetInfo describes a registered scoring ruleset for API listings.
type RulesetInfo struct {
	ID    string `json:"id"`
	Table string `json:"table"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
