package models

import "context"

// StatsProvider is the external bulk source of NFL data.
type StatsProvider interface {
	WeeklyPlayerStats(ctx context.Context, season int) ([]ProviderPlayerStat, error)
	WeeklyRosters(ctx context.Context, season int) ([]ProviderRosterEntry, error)
	Schedules(ctx context.Context, season int) ([]Game, error)
	DepthCharts(ctx context.Context, season int) ([]ProviderDepthEntry, error)
}

// Regressor predicts a stat line for every rostered player.
// The returned slice is index-aligned with the input.
type Regressor interface {
	Predict(ctx context.Context, target SeasonWeek, roster []RosterEntry) ([]StatLine, error)
}
