package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leadpulse/leadpulse/internal/usecase"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

// storeError maps store failures onto status codes: unknown ids are
// 404, validation problems are 400, the rest is on us.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		respondError(w, http.StatusNotFound, "record not found")
	case usecase.IsDomainError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
