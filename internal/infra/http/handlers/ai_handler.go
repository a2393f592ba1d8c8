package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/leadpulse/leadpulse/internal/infra/integration/gemini"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

type AIHandler struct {
	Store       *usecase.Store
	Client      *gemini.Client
	rateLimiter *RateLimiter
}

func NewAIHandler(store *usecase.Store, client *gemini.Client) *AIHandler {
	return &AIHandler{
		Store:       store,
		Client:      client,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

// Generate drafts an outreach message for a lead. The API key and the
// service description come from the stored settings; the request only
// carries the lead context and style knobs.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var input gemini.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	settings := h.Store.Settings()
	if input.ServiceDescription == "" {
		input.ServiceDescription = settings.ServiceDescription
	}

	text, err := h.Client.GenerateMessage(r.Context(), settings.GeminiAPIKey, input)
	if err != nil {
		var keyErr *gemini.APIKeyError
		if errors.As(err, &keyErr) {
			respondError(w, http.StatusBadRequest, keyErr.Error())
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": text})
}
