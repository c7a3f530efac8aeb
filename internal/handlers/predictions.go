package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Alias1177/numbersff/models"
)

// GetPredictions returns a ruleset's predictions, best first
// Query params: season, week, limit
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleset")
	rs, ok := h.registry.Get(id)
	if !ok {
		h.respondError(w, http.StatusNotFound, "unknown ruleset "+id, nil)
		return
	}
	sw, err := parseSeasonWeek(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	preds, err := h.db.GetRankedPredictions(ctx, rs.Table, sw, limit)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve predictions", err)
		return
	}

	ranked := make([]models.RankedPrediction, 0, len(preds))
	for _, p := range preds {
		ranked = append(ranked, models.RankedPrediction{
			PredictionRecord:       p,
			PredictedFantasyPoints: models.Coalesce(p.PredictedFantasyPoints()),
		})
	}
	h.respondJSON(w, http.StatusOK, ranked)
}
