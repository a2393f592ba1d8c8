package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadpulse/leadpulse/internal/entity"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

type TemplateHandler struct {
	Store *usecase.Store
}

func NewTemplateHandler(store *usecase.Store) *TemplateHandler {
	return &TemplateHandler{Store: store}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates": h.Store.Templates(),
	})
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddTemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	tpl, err := h.Store.AddTemplate(input)
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}

type updateTemplateRequest struct {
	Name    *string              `json:"name"`
	Type    *entity.TemplateType `json:"type"`
	Content *string              `json:"content"`
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Type != nil && !req.Type.IsValid() {
		respondError(w, http.StatusBadRequest, "type must be dm or followup")
		return
	}

	patch := entity.TemplatePatch{Name: req.Name, Type: req.Type, Content: req.Content}
	if err := h.Store.UpdateTemplate(id, patch); err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteTemplate(id); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renderTemplateRequest struct {
	LeadName string          `json:"leadName"`
	Category entity.Category `json:"category"`
}

// Render fills the [Name] and [niche] placeholders of a stored
// template for a given lead.
func (h *TemplateHandler) Render(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req renderTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	for _, tpl := range h.Store.Templates() {
		if tpl.ID == id {
			respondJSON(w, http.StatusOK, map[string]string{
				"content": tpl.Render(req.LeadName, req.Category),
			})
			return
		}
	}
	respondError(w, http.StatusNotFound, "record not found")
}
