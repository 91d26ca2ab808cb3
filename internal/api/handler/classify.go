package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/features"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/specs"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/logger"
)

// Classify scores explicit product/item pairs with the category's model and
// returns one probability per row, in row order.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	facade, err := h.registry.Get(category)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Unknown category: "+category)
		return
	}
	rows, err := decodeRows(r)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	if len(rows) == 0 {
		h.writeJSON(w, http.StatusOK, []float64{})
		return
	}

	pairs := make([]features.Pair, len(rows))
	for i, rw := range rows {
		productSpecs, err := specs.Parse(rw[colProductSpecs])
		if err != nil {
			h.writeAppError(w, err)
			return
		}
		itemSpecs, err := specs.Parse(rw[colItemSpecs])
		if err != nil {
			h.writeAppError(w, err)
			return
		}
		pairs[i] = features.Pair{
			Catalog: item.New(rw[colProductTitle], productSpecs, rw[colProductDetails]),
			Query:   item.New(rw[colItemTitle], itemSpecs, nil),
		}
	}

	probs, err := facade.ClassifyPairs(r.Context(), pairs)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			h.writeAppError(w, apperrors.New(apperrors.ErrTimeout, http.StatusServiceUnavailable, "request timed out"))
			return
		}
		logger.FromContext(r.Context()).Error("classify failed", "category", category, "rows", len(rows), "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "failed to classify pairs"))
		return
	}
	if h.metrics != nil {
		h.metrics.PairsScoredTotal.WithLabelValues(category).Add(float64(len(pairs)))
	}
	h.writeJSON(w, http.StatusOK, probs)
}
