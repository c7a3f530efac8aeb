package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alias1177/numbersff/internal/accuracy"
	"github.com/Alias1177/numbersff/internal/scoring"
	"github.com/Alias1177/numbersff/models"
)

// Schedule replaces the stored schedule for season.
func (r *Runner) Schedule(ctx context.Context, season int) error {
	sw := models.SeasonWeek{Season: season}
	return r.track(ctx, JobSchedule, sw, func(ctx context.Context, logger zerolog.Logger) error {
		games, err := r.provider.Schedules(ctx, season)
		if err != nil {
			return fmt.Errorf("fetch schedule: %w", err)
		}
		if len(games) == 0 {
			return fmt.Errorf("%w: no games for season %d", ErrNoData, season)
		}
		if err := r.store.ReplaceSchedule(ctx, season, games); err != nil {
			return err
		}
		logger.Info().Int("games", len(games)).Msg("Schedule stored")
		return nil
	})
}

// seasonFeeds is the provider data one season of stats needs
type seasonFeeds struct {
	stats   []models.ProviderPlayerStat
	games   []models.Game
	depth   []models.ProviderDepthEntry
	rosters []models.ProviderRosterEntry
}

func (r *Runner) fetchSeason(ctx context.Context, season int) (seasonFeeds, error) {
	var (
		feeds seasonFeeds
		err   error
	)
	if feeds.stats, err = r.provider.WeeklyPlayerStats(ctx, season); err != nil {
		return feeds, fmt.Errorf("fetch player stats: %w", err)
	}
	if feeds.games, err = r.provider.Schedules(ctx, season); err != nil {
		return feeds, fmt.Errorf("fetch schedule: %w", err)
	}
	if feeds.depth, err = r.provider.DepthCharts(ctx, season); err != nil {
		return feeds, fmt.Errorf("fetch depth charts: %w", err)
	}
	if feeds.rosters, err = r.provider.WeeklyRosters(ctx, season); err != nil {
		return feeds, fmt.Errorf("fetch rosters: %w", err)
	}
	return feeds, nil
}

func (r *Runner) storeWeek(ctx context.Context, sw models.SeasonWeek, feeds seasonFeeds) (int, error) {
	lines := BuildWeeklyStats(sw, feeds.stats, feeds.games, feeds.depth, feeds.rosters)
	if len(lines) == 0 {
		return 0, fmt.Errorf("%w: no player stats for %s", ErrNoData, sw)
	}
	if err := r.store.ReplaceWeeklyStats(ctx, sw, lines); err != nil {
		return 0, err
	}
	return len(lines), nil
}

// Stats pulls the actual box scores for one week.
func (r *Runner) Stats(ctx context.Context, sw models.SeasonWeek) error {
	if err := sw.Validate(); err != nil {
		return err
	}
	return r.track(ctx, JobStats, sw, func(ctx context.Context, logger zerolog.Logger) error {
		feeds, err := r.fetchSeason(ctx, sw.Season)
		if err != nil {
			return err
		}
		n, err := r.storeWeek(ctx, sw, feeds)
		if err != nil {
			return err
		}
		r.invalidate(ctx, logger, sw)
		logger.Info().Int("players", n).Msg("Weekly stats stored")
		return nil
	})
}

// StatsHistory backfills every week the provider has for season.
func (r *Runner) StatsHistory(ctx context.Context, season int) error {
	sw := models.SeasonWeek{Season: season}
	return r.track(ctx, JobStatsHistory, sw, func(ctx context.Context, logger zerolog.Logger) error {
		feeds, err := r.fetchSeason(ctx, season)
		if err != nil {
			return err
		}
		weeks := seasonWeeks(feeds.stats)
		if len(weeks) == 0 {
			return fmt.Errorf("%w: no player stats for season %d", ErrNoData, season)
		}
		total := 0
		for _, week := range weeks {
			if week.Season != season {
				continue
			}
			n, err := r.storeWeek(ctx, week, feeds)
			if err != nil {
				return fmt.Errorf("week %d: %w", week.Week, err)
			}
			r.invalidate(ctx, logger, week)
			total += n
		}
		logger.Info().Int("weeks", len(weeks)).Int("rows", total).Msg("Season stats stored")
		return nil
	})
}

func (r *Runner) pullRoster(ctx context.Context, sw models.SeasonWeek) ([]models.RosterEntry, error) {
	rosters, err := r.provider.WeeklyRosters(ctx, sw.Season)
	if err != nil {
		return nil, fmt.Errorf("fetch rosters: %w", err)
	}
	games, err := r.provider.Schedules(ctx, sw.Season)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	depth, err := r.provider.DepthCharts(ctx, sw.Season)
	if err != nil {
		return nil, fmt.Errorf("fetch depth charts: %w", err)
	}

	roster := BuildRoster(sw, rosters, games, depth)
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: no active players for %s", ErrNoData, sw)
	}
	if err := r.store.ReplaceRoster(ctx, sw, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// Roster stores the active fantasy-position players for one week.
func (r *Runner) Roster(ctx context.Context, sw models.SeasonWeek) error {
	if err := sw.Validate(); err != nil {
		return err
	}
	return r.track(ctx, JobRoster, sw, func(ctx context.Context, logger zerolog.Logger) error {
		roster, err := r.pullRoster(ctx, sw)
		if err != nil {
			return err
		}
		logger.Info().Int("players", len(roster)).Msg("Roster stored")
		return nil
	})
}

// Predict refreshes the roster, predicts every player's line and scores
// the predictions under every registered ruleset.
func (r *Runner) Predict(ctx context.Context, sw models.SeasonWeek) error {
	if err := sw.Validate(); err != nil {
		return err
	}
	return r.track(ctx, JobPredict, sw, func(ctx context.Context, logger zerolog.Logger) error {
		roster, err := r.pullRoster(ctx, sw)
		if err != nil {
			return err
		}

		lines, err := r.regressor.Predict(ctx, sw, roster)
		if err != nil {
			return fmt.Errorf("run regressor: %w", err)
		}
		if len(lines) != len(roster) {
			return fmt.Errorf("regressor returned %d lines for %d players", len(lines), len(roster))
		}

		preds := BuildPredictions(roster, lines)
		if err := r.store.ReplacePredictions(ctx, sw, preds); err != nil {
			return err
		}
		for _, rs := range r.registry.All() {
			if err := r.scoreRuleset(ctx, sw, rs, preds); err != nil {
				return err
			}
		}
		r.invalidate(ctx, logger, sw)
		logger.Info().
			Int("players", len(preds)).
			Int("rulesets", len(r.registry.All())).
			Msg("Predictions stored")
		return nil
	})
}

func (r *Runner) scoreRuleset(ctx context.Context, sw models.SeasonWeek, rs scoring.Ruleset, preds []models.PredictionRecord) error {
	if err := r.store.EnsureRulesetTable(ctx, rs.Table); err != nil {
		return fmt.Errorf("ruleset %s: %w", rs.ID, err)
	}
	if err := r.store.ReplaceFantasyPoints(ctx, rs.Table, sw, scoring.ScoreAll(rs.Config, preds)); err != nil {
		return fmt.Errorf("ruleset %s: %w", rs.ID, err)
	}
	return nil
}

// Accuracy reconciles a played week's predictions against its actual stats
// and stores the per-player diffs and the fantasy points summary.
func (r *Runner) Accuracy(ctx context.Context, sw models.SeasonWeek) error {
	if err := sw.Validate(); err != nil {
		return err
	}
	return r.track(ctx, JobAccuracy, sw, func(ctx context.Context, logger zerolog.Logger) error {
		records, err := r.reconcile(ctx, sw)
		if err != nil {
			return err
		}
		metric := accuracy.SummaryMetric(sw, records)

		if err := r.store.ReplaceAccuracy(ctx, sw, records, metric); err != nil {
			return err
		}
		r.invalidate(ctx, logger, sw)

		event := logger.Info().Int("matched", len(records))
		if metric.MAE != nil {
			event = event.Float64("mae", *metric.MAE)
		}
		event.Msg("Accuracy stored")
		return nil
	})
}

// invalidate drops cached API responses built from sw's old data
func (r *Runner) invalidate(ctx context.Context, logger zerolog.Logger, sw models.SeasonWeek) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateWeek(ctx, sw); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate cached responses")
	}
}

func (r *Runner) reconcile(ctx context.Context, sw models.SeasonWeek) ([]models.AccuracyRecord, error) {
	preds, err := r.store.GetRankedPredictions(ctx, r.accuracyRuleset.Table, sw, 0)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: no predictions for %s", ErrNoData, sw)
	}
	actuals, err := r.store.GetWeeklyStats(ctx, sw)
	if err != nil {
		return nil, err
	}
	if len(actuals) == 0 {
		return nil, fmt.Errorf("%w: no actual stats for %s", ErrNoData, sw)
	}
	return accuracy.ReconcileAll(r.accuracyRuleset.Config, preds, actuals), nil
}
