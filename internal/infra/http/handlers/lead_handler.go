package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadpulse/leadpulse/internal/entity"
	"github.com/leadpulse/leadpulse/internal/infra/http/middleware"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

type LeadHandler struct {
	Store *usecase.Store
}

func NewLeadHandler(store *usecase.Store) *LeadHandler {
	return &LeadHandler{Store: store}
}

type leadsResponse struct {
	Leads  []entity.Lead `json:"leads"`
	Synced bool          `json:"synced"`
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, leadsResponse{
		Leads:  h.Store.Leads(),
		Synced: h.Store.Synced(),
	})
}

type followUpResponse struct {
	Due      []entity.Lead `json:"due"`
	Upcoming []entity.Lead `json:"upcoming"`
}

func (h *LeadHandler) FollowUps(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, followUpResponse{
		Due:      h.Store.FollowUpDue(),
		Upcoming: h.Store.FollowUpUpcoming(),
	})
}

func (h *LeadHandler) Ready(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, leadsResponse{
		Leads:  h.Store.NewLeadsReadyToDm(),
		Synced: h.Store.Synced(),
	})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	lead, err := h.Store.AddLead(input)
	if err != nil {
		storeError(w, err)
		return
	}

	middleware.RecordLeadCreated()
	respondJSON(w, http.StatusCreated, lead)
}

type bulkImportRequest struct {
	Leads []usecase.AddLeadInput `json:"leads"`
}

func (h *LeadHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var req bulkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := h.Store.BulkAddLeads(req.Leads)
	if err != nil {
		storeError(w, err)
		return
	}

	middleware.RecordBulkImport(result.Imported, result.Duplicates)
	respondJSON(w, http.StatusOK, result)
}

type updateLeadRequest struct {
	Name            *string            `json:"name"`
	ProfileURL      *string            `json:"profileUrl"`
	Platform        *entity.Platform   `json:"platform"`
	Category        *entity.Category   `json:"category"`
	Status          *entity.LeadStatus `json:"status"`
	Notes           *string            `json:"notes"`
	DmSentAt        *time.Time         `json:"dmSentAt"`
	FollowUpSentAt  *time.Time         `json:"followUpSentAt"`
	RepliedAt       *time.Time         `json:"repliedAt"`
	FollowUpDueDate *time.Time         `json:"followUpDueDate"`
	LastDmText      *string            `json:"lastDmText"`
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != nil && !req.Status.IsPersisted() {
		respondError(w, http.StatusBadRequest, "status "+string(*req.Status)+" cannot be stored")
		return
	}
	if req.Platform != nil && !req.Platform.IsValid() {
		respondError(w, http.StatusBadRequest, "unknown platform")
		return
	}
	if req.Category != nil && !req.Category.IsValid() {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	patch := entity.LeadPatch{
		Name:            req.Name,
		ProfileURL:      req.ProfileURL,
		Platform:        req.Platform,
		Category:        req.Category,
		Status:          req.Status,
		Notes:           req.Notes,
		DmSentAt:        req.DmSentAt,
		FollowUpSentAt:  req.FollowUpSentAt,
		RepliedAt:       req.RepliedAt,
		FollowUpDueDate: req.FollowUpDueDate,
		LastDmText:      req.LastDmText,
	}

	if err := h.Store.UpdateLead(id, patch); err != nil {
		storeError(w, err)
		return
	}

	lead, _ := h.Store.Lead(id)
	respondJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteLead(id); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markDmSentRequest struct {
	DmText       string `json:"dmText"`
	FollowUpDays int    `json:"followUpDays"`
}

func (h *LeadHandler) MarkDmSent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req markDmSentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	if err := h.Store.MarkDmSent(id, req.DmText, req.FollowUpDays); err != nil {
		storeError(w, err)
		return
	}

	lead, _ := h.Store.Lead(id)
	respondJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) MarkFollowUpSent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.MarkFollowUpSent(id); err != nil {
		storeError(w, err)
		return
	}

	lead, _ := h.Store.Lead(id)
	respondJSON(w, http.StatusOK, lead)
}

type markStatusRequest struct {
	Status entity.LeadStatus `json:"status"`
}

func (h *LeadHandler) MarkStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req markStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.Store.MarkStatus(id, req.Status); err != nil {
		storeError(w, err)
		return
	}

	lead, _ := h.Store.Lead(id)
	respondJSON(w, http.StatusOK, lead)
}
