package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/leadpulse/leadpulse/internal/entity"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

type SettingsHandler struct {
	Store *usecase.Store
}

func NewSettingsHandler(store *usecase.Store) *SettingsHandler {
	return &SettingsHandler{Store: store}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Store.Settings())
}

type updateSettingsRequest struct {
	GeminiAPIKey       *string `json:"geminiApiKey"`
	ServiceDescription *string `json:"serviceDescription"`
	FollowUpDays       *int    `json:"followUpDays"`
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.FollowUpDays != nil && *req.FollowUpDays < 1 {
		respondError(w, http.StatusBadRequest, "followUpDays must be at least 1")
		return
	}

	h.Store.UpdateSettings(entity.SettingsPatch{
		GeminiAPIKey:       req.GeminiAPIKey,
		ServiceDescription: req.ServiceDescription,
		FollowUpDays:       req.FollowUpDays,
	})

	respondJSON(w, http.StatusOK, h.Store.Settings())
}
