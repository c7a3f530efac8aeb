// Package pipeline runs the batch jobs that fill and reconcile the store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/numbersff/internal/scoring"
	"github.com/Alias1177/numbersff/models"
)

// Job names
const (
	JobSchedule     = "schedule"
	JobStats        = "stats"
	JobStatsHistory = "stats-history"
	JobRoster       = "roster"
	JobPredict      = "predict"
	JobAccuracy     = "accuracy"
)

// ErrNoData is returned when a job has nothing to work on
var ErrNoData = errors.New("no data")

// Store is the persistence the jobs need
type Store interface {
	ReplaceSchedule(ctx context.Context, season int, games []models.Game) error
	ReplaceWeeklyStats(ctx context.Context, sw models.SeasonWeek, stats []models.WeeklyStats) error
	GetWeeklyStats(ctx context.Context, sw models.SeasonWeek) ([]models.WeeklyStats, error)
	ReplaceRoster(ctx context.Context, sw models.SeasonWeek, roster []models.RosterEntry) error
	ReplacePredictions(ctx context.Context, sw models.SeasonWeek, preds []models.PredictionRecord) error
	EnsureRulesetTable(ctx context.Context, table string) error
	ReplaceFantasyPoints(ctx context.Context, table string, sw models.SeasonWeek, points []models.FantasyPointsRow) error
	GetRankedPredictions(ctx context.Context, table string, sw models.SeasonWeek, limit int) ([]models.PredictionRecord, error)
	ReplaceAccuracy(ctx context.Context, sw models.SeasonWeek, records []models.AccuracyRecord, m models.AccuracyMetric) error
	InsertJobRun(ctx context.Context, run models.JobRun) error
	FinishJobRun(ctx context.Context, jobID, status, errText string, completedAt time.Time) error
}

// Notifier is told about every finished job
type Notifier interface {
	JobFinished(ctx context.Context, run models.JobRun) error
}

// Invalidator drops cached API responses for a week
type Invalidator interface {
	InvalidateWeek(ctx context.Context, sw models.SeasonWeek) error
}

// Runner wires the provider, regressor and store together
type Runner struct {
	store           Store
	provider        models.StatsProvider
	regressor       models.Regressor
	registry        *scoring.Registry
	accuracyRuleset scoring.Ruleset
	notifier        Notifier
	cache           Invalidator
	now             func() time.Time
	logger          zerolog.Logger
}

// Options holds the optional collaborators of a Runner
type Options struct {
	// AccuracyRuleset scores both sides of the reconciliation
	AccuracyRuleset string
	Notifier        Notifier
	Cache           Invalidator
	Now             func() time.Time
}

// NewRunner creates a job runner. The accuracy ruleset must be registered.
func NewRunner(store Store, provider models.StatsProvider, regressor models.Regressor, registry *scoring.Registry, opts Options) (*Runner, error) {
	if opts.AccuracyRuleset == "" {
		opts.AccuracyRuleset = scoring.RulesetHalfPPR
	}
	rs, ok := registry.Get(opts.AccuracyRuleset)
	if !ok {
		return nil, fmt.Errorf("%w: accuracy ruleset %q is not registered", scoring.ErrInvalidConfig, opts.AccuracyRuleset)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		store:           store,
		provider:        provider,
		regressor:       regressor,
		registry:        registry,
		accuracyRuleset: rs,
		notifier:        opts.Notifier,
		cache:           opts.Cache,
		now:             opts.Now,
		logger:          log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// track records a job in job_tracker around fn and announces the outcome
func (r *Runner) track(ctx context.Context, job string, sw models.SeasonWeek, fn func(ctx context.Context, logger zerolog.Logger) error) error {
	run := models.JobRun{
		JobID:     uuid.NewString(),
		Job:       job,
		Status:    models.JobStatusRunning,
		Season:    sw.Season,
		Week:      sw.Week,
		StartedAt: r.now(),
	}
	logger := r.logger.With().
		Str("job", job).
		Str("job_id", run.JobID).
		Int("season", sw.Season).
		Int("week", sw.Week).
		Logger()

	if err := r.store.InsertJobRun(ctx, run); err != nil {
		return fmt.Errorf("record %s start: %w", job, err)
	}
	logger.Info().Msg("Job started")

	err := fn(ctx, logger)

	completed := r.now()
	run.CompletedAt = &completed
	run.Status = models.JobStatusSucceeded
	if err != nil {
		run.Status = models.JobStatusFailed
		run.Error = err.Error()
		logger.Error().Err(err).Dur("took", completed.Sub(run.StartedAt)).Msg("Job failed")
	} else {
		logger.Info().Dur("took", completed.Sub(run.StartedAt)).Msg("Job finished")
	}

	// the job outcome wins over bookkeeping failures
	if ferr := r.store.FinishJobRun(ctx, run.JobID, run.Status, run.Error, completed); ferr != nil {
		logger.Error().Err(ferr).Msg("Failed to record job completion")
	}
	if r.notifier != nil {
		if nerr := r.notifier.JobFinished(ctx, run); nerr != nil {
			logger.Warn().Err(nerr).Msg("Failed to send job notification")
		}
	}
	return err
}
