package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes builds the API router on top of r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rulesets", h.GetRulesets)
		r.Get("/predictions/{ruleset}", h.GetPredictions)
		r.Get("/current-season-week", h.GetCurrentSeasonWeek)
		r.Get("/get-prediction-accuracy", h.GetPredictionAccuracy)

		r.Route("/accuracy", func(r chi.Router) {
			r.Get("/diffs", h.GetAccuracyDiffs)
			r.Get("/metrics", h.GetAccuracyMetrics)
			r.Get("/completed-weeks", h.GetCompletedWeeks)
		})
	})
}
