package handlers

import (
	"database/sql"
	"net/http"

	"github.com/leadpulse/leadpulse/internal/usecase"
)

type HealthHandler struct {
	DB    *sql.DB // nil in local-only mode
	Store *usecase.Store
}

func NewHealthHandler(db *sql.DB, store *usecase.Store) *HealthHandler {
	return &HealthHandler{DB: db, Store: store}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	dbStatus := "not_configured"
	if h.DB != nil {
		dbStatus = "connected"
		if err := h.DB.PingContext(r.Context()); err != nil {
			dbStatus = "unreachable"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"database": dbStatus,
		"synced":   h.Store.Synced(),
	})
}
