package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"reliefd/internal/domain"
	"reliefd/internal/middleware"
)

type requestDTO struct {
	ID           int64     `json:"id"`
	CampaignID   int64     `json:"campaign_id"`
	Requester    string    `json:"requester"`
	ResourceType string    `json:"resource_type"`
	Quantity     int64     `json:"quantity"`
	UrgencyLevel string    `json:"urgency_level"`
	Fulfilled    bool      `json:"fulfilled"`
	CreatedAt    time.Time `json:"created_at"`
}

func requestToDTO(req domain.ReliefRequest) requestDTO {
	return requestDTO{
		ID:           req.ID,
		CampaignID:   req.CampaignID,
		Requester:    req.Requester,
		ResourceType: req.ResourceType,
		Quantity:     req.Quantity,
		UrgencyLevel: req.UrgencyLevel,
		Fulfilled:    req.Fulfilled,
		CreatedAt:    req.CreatedAt,
	}
}

type submitRequestRequest struct {
	ResourceType string `json:"resource_type"`
	Quantity     int64  `json:"quantity"`
	UrgencyLevel string `json:"urgency_level"`
}

func (a *App) RequestsSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return
	}
	var req submitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	requester := middleware.CallerIdentity(r.Context())
	created, err := a.Ledger.SubmitRequest(id, requester, req.ResourceType, req.Quantity, req.UrgencyLevel)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, requestToDTO(created))
}

func (a *App) RequestsGet(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid request id")
		return
	}
	req, err := a.Ledger.Request(id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, requestToDTO(req))
}

func (a *App) RequestsFulfill(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid request id")
		return
	}
	caller := middleware.CallerIdentity(r.Context())
	req, err := a.Ledger.FulfillRequest(id, caller)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, requestToDTO(req))
}
