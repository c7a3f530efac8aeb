package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/numbersff/internal/api/nflverse"
	"github.com/Alias1177/numbersff/internal/cache"
	"github.com/Alias1177/numbersff/internal/config"
	"github.com/Alias1177/numbersff/internal/database"
	"github.com/Alias1177/numbersff/internal/notify"
	"github.com/Alias1177/numbersff/internal/pipeline"
	"github.com/Alias1177/numbersff/internal/predict"
	"github.com/Alias1177/numbersff/models"
)

const usage = `usage: pipeline <command> [args]

commands:
  schedule <season>               replace the season's schedule
  stats <season> <week>           pull actual stats for one week
  stats-history <season>...       pull actual stats for every week of each season
  roster <season> <week>          pull the active roster for one week
  predict <season> <week>         predict and score one week under every ruleset
  accuracy <season> <week>        reconcile one played week
  jobs [-limit n]                 list recent job runs
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	db, err := database.New(cfg.DatabaseParams())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	command, args := flag.Arg(0), flag.Args()[1:]
	if command == "jobs" {
		if err := listJobs(ctx, db, args); err != nil {
			log.Fatal().Err(err).Msg("Failed to list jobs")
		}
		return
	}

	runner, closeRunner, err := newRunner(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up pipeline")
	}
	defer closeRunner()

	if err := run(ctx, runner, command, args); err != nil {
		log.Error().Err(err).Str("command", command).Msg("Pipeline failed")
		closeRunner()
		db.Close()
		os.Exit(1)
	}
}

func newRunner(ctx context.Context, cfg *config.Config, db *database.DB) (*pipeline.Runner, func(), error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}

	provider := nflverse.NewClient(nflverse.ClientOptions{
		ReleasesURL:    cfg.ReleasesURL,
		GamesURL:       cfg.GamesURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})

	opts := pipeline.Options{AccuracyRuleset: cfg.AccuracyRuleset}
	closeFn := func() {}

	if cfg.NotificationsEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.NotifyRetries, 2*time.Second)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram unavailable, job notifications disabled")
		} else {
			opts.Notifier = tg
		}
	}

	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		redisClient, err := cache.Connect(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cached responses will expire on their own")
		} else {
			opts.Cache = cache.NewRedisCache(redisClient)
			closeFn = func() { redisClient.Close() }
		}
	}

	regressor := predict.NewBaseline(db, cfg.PredictWindow)
	runner, err := pipeline.NewRunner(db, provider, regressor, registry, opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return runner, closeFn, nil
}

func run(ctx context.Context, runner *pipeline.Runner, command string, args []string) error {
	switch command {
	case "schedule":
		season, err := seasonArg(args)
		if err != nil {
			return err
		}
		return runner.Schedule(ctx, season)
	case "stats-history":
		if len(args) == 0 {
			return fmt.Errorf("stats-history needs at least one season")
		}
		for _, arg := range args {
			season, err := seasonArg([]string{arg})
			if err != nil {
				return err
			}
			if err := runner.StatsHistory(ctx, season); err != nil {
				return err
			}
		}
		return nil
	case "stats", "roster", "predict", "accuracy":
		if len(args) != 2 {
			return fmt.Errorf("%s needs <season> <week>", command)
		}
		sw, err := models.ParseSeasonWeek(args[0], args[1])
		if err != nil {
			return err
		}
		switch command {
		case "stats":
			return runner.Stats(ctx, sw)
		case "roster":
			return runner.Roster(ctx, sw)
		case "predict":
			return runner.Predict(ctx, sw)
		default:
			return runner.Accuracy(ctx, sw)
		}
	}
	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

func seasonArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a single <season>")
	}
	season, err := strconv.Atoi(args[0])
	if err != nil || season < models.MinSeason || season > models.MaxSeason {
		return 0, fmt.Errorf("%w: season %q", models.ErrInvalidSeasonWeek, args[0])
	}
	return season, nil
}

func listJobs(ctx context.Context, db *database.DB, args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runs, err := db.ListJobRuns(ctx, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tJOB\tSEASON\tWEEK\tSTATUS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Job, r.Season, r.Week, r.Status, r.Error)
	}
	return w.Flush()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
