package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Alias1177/numbersff/internal/accuracy"
	"github.com/Alias1177/numbersff/internal/cache"
	"github.com/Alias1177/numbersff/models"
)

// weekHandler parses season/week and serves a cached week-scoped response
func (h *Handler) weekHandler(route string, load func(ctx context.Context, sw models.SeasonWeek) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw, err := parseSeasonWeek(r)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		key := cache.WeekKey(route, sw)
		h.cached(w, r, key,
			func(ctx context.Context, data []byte) error {
				return h.cache.SetWeek(ctx, sw, key, data)
			},
			func(ctx context.Context) (interface{}, error) {
				return load(ctx, sw)
			},
		)
	}
}

// GetAccuracyDiffs returns the stored per-player diffs for a week
// Query params: season, week
func (h *Handler) GetAccuracyDiffs(w http.ResponseWriter, r *http.Request) {
	h.weekHandler("accuracy:diffs", func(ctx context.Context, sw models.SeasonWeek) (interface{}, error) {
		return h.db.GetPredictionDiffs(ctx, sw)
	})(w, r)
}

// GetAccuracyMetrics returns the stored fantasy points metric for a week
// Query params: season, week
func (h *Handler) GetAccuracyMetrics(w http.ResponseWriter, r *http.Request) {
	h.weekHandler("accuracy:metrics", func(ctx context.Context, sw models.SeasonWeek) (interface{}, error) {
		m, err := h.db.GetAccuracyMetric(ctx, sw)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: no accuracy metrics for %s", errNotFound, sw)
		}
		return m, nil
	})(w, r)
}

// GetPredictionAccuracy reconciles a week on the fly and returns every record
// with the metrics for every tracked stat
// Query params: season, week
func (h *Handler) GetPredictionAccuracy(w http.ResponseWriter, r *http.Request) {
	h.weekHandler("prediction-accuracy", func(ctx context.Context, sw models.SeasonWeek) (interface{}, error) {
		preds, err := h.db.GetRankedPredictions(ctx, h.accuracyRuleset.Table, sw, 0)
		if err != nil {
			return nil, err
		}
		actuals, err := h.db.GetWeeklyStats(ctx, sw)
		if err != nil {
			return nil, err
		}
		records := accuracy.ReconcileAll(h.accuracyRuleset.Config, preds, actuals)
		return accuracy.BuildReport(sw, records), nil
	})(w, r)
}

// GetCompletedWeeks lists every season/week with stored diffs
func (h *Handler) GetCompletedWeeks(w http.ResponseWriter, r *http.Request) {
	key := cache.CompletedWeeksKey()
	h.cached(w, r, key,
		func(ctx context.Context, data []byte) error {
			return h.cache.SetCompletedWeeks(ctx, key, data)
		},
		func(ctx context.Context) (interface{}, error) {
			return h.db.CompletedWeeks(ctx)
		},
	)
}
