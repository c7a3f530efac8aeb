// Package handlers serves the read-only prediction and accuracy API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/numbersff/internal/scoring"
	"github.com/Alias1177/numbersff/models"
)

// MaxPredictionLimit caps the limit query parameter
const MaxPredictionLimit = 500

const queryTimeout = 5 * time.Second

var errNotFound = errors.New("not found")

// Store is the read side of the database the API needs
type Store interface {
	PingContext(ctx context.Context) error
	GetRankedPredictions(ctx context.Context, table string, sw models.SeasonWeek, limit int) ([]models.PredictionRecord, error)
	GetWeeklyStats(ctx context.Context, sw models.SeasonWeek) ([]models.WeeklyStats, error)
	GetPredictionDiffs(ctx context.Context, sw models.SeasonWeek) ([]models.AccuracyRecord, error)
	GetAccuracyMetric(ctx context.Context, sw models.SeasonWeek) (*models.AccuracyMetric, error)
	CompletedWeeks(ctx context.Context) ([]models.SeasonWeek, error)
	CurrentSeasonWeek(ctx context.Context, today string) (*models.SeasonWeek, error)
}

// Cache keeps encoded responses. Every method may fail without failing the request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWeek(ctx context.Context, sw models.SeasonWeek, key string, data []byte) error
	SetCompletedWeeks(ctx context.Context, key string, data []byte) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db              Store
	cache           Cache
	registry        *scoring.Registry
	accuracyRuleset scoring.Ruleset
	now             func() time.Time
	logger          zerolog.Logger
}

// Options holds the optional dependencies of a Handler
type Options struct {
	// Cache is nil when responses are not cached
	Cache           Cache
	AccuracyRuleset string
	Now             func() time.Time
}

// NewHandler creates a new handler with dependencies
func NewHandler(db Store, registry *scoring.Registry, opts Options) (*Handler, error) {
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
	return &Handler{
		db:              db,
		cache:           opts.Cache,
		registry:        registry,
		accuracyRuleset: rs,
		now:             opts.Now,
		logger:          log.With().Str("component", "api").Logger(),
	}, nil
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().UTC(),
		"service":   "numbersff-api",
	})
}

// GetRulesets lists the registered scoring rulesets
func (h *Handler) GetRulesets(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.registry.Info())
}

// GetCurrentSeasonWeek returns the earliest scheduled week that has not been played
func (h *Handler) GetCurrentSeasonWeek(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	sw, err := h.db.CurrentSeasonWeek(ctx, models.Today(h.now()))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve current week", err)
		return
	}
	if sw == nil {
		h.respondError(w, http.StatusNotFound, "no upcoming games scheduled", nil)
		return
	}
	h.respondJSON(w, http.StatusOK, sw)
}

// parseSeasonWeek reads the required season and week query parameters
func parseSeasonWeek(r *http.Request) (models.SeasonWeek, error) {
	q := r.URL.Query()
	return models.ParseSeasonWeek(q.Get("season"), q.Get("week"))
}

// parseLimit reads an optional positive limit, capped at MaxPredictionLimit. 0 means no limit.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > MaxPredictionLimit {
		limit = MaxPredictionLimit
	}
	return limit, nil
}

// cached serves key from the cache when possible, otherwise encodes load's result
// and stores it through store. A load returning errNotFound answers 404.
func (h *Handler) cached(
	w http.ResponseWriter,
	r *http.Request,
	key string,
	store func(ctx context.Context, data []byte) error,
	load func(ctx context.Context) (interface{}, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if h.cache != nil {
		data, ok, err := h.cache.Get(ctx, key)
		if err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		if ok {
			w.Header().Set("X-Cache", "HIT")
			h.respondRaw(w, http.StatusOK, data)
			return
		}
	}

	value, err := load(ctx)
	if errors.Is(err, errNotFound) {
		h.respondError(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load data", err)
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to encode response", err)
		return
	}
	if h.cache != nil {
		if err := store(ctx, data); err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
		w.Header().Set("X-Cache", "MISS")
	}
	h.respondRaw(w, http.StatusOK, data)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Error encoding response")
	}
}

func (h *Handler) respondRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		h.logger.Error().Err(err).Msg("Error writing response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Error().Err(err).Int("status", status).Msg(message)
	}
	h.respondJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
