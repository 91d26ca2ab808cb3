package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// SnapshotLister is the read side of Store.
type SnapshotLister interface {
	List(ctx context.Context, limit int) ([]Snapshot, error)
}

type Handler struct {
	agg       *Aggregator
	snapshots SnapshotLister
	logger    *slog.Logger
}

// NewHandler serves live stats; snapshots may be nil when no store is
// configured.
func NewHandler(agg *Aggregator, snapshots SnapshotLister) *Handler {
	return &Handler{
		agg:       agg,
		snapshots: snapshots,
		logger:    slog.Default().With("component", "analytics-handler"),
	}
}

// Register mounts the analytics routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", h.Snapshots)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.agg.Stats())
}

func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, http.StatusServiceUnavailable, "snapshot store is not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			h.writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 1000")
			return
		}
		limit = n
	}
	snaps, err := h.snapshots.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing snapshots failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cannot list snapshots")
		return
	}
	h.writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
