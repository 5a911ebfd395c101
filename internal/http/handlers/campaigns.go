package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"reliefd/internal/domain"
	"reliefd/internal/middleware"
)

type campaignDTO struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	TargetAmount int64     `json:"target_amount"`
	RaisedAmount int64     `json:"raised_amount"`
	Active       bool      `json:"active"`
	Coordinator  string    `json:"coordinator"`
	CreatedAt    time.Time `json:"created_at"`
}

func campaignToDTO(c domain.Campaign) campaignDTO {
	return campaignDTO{
		ID:           c.ID,
		Name:         c.Name,
		Location:     c.Location,
		Description:  c.Description,
		TargetAmount: c.TargetAmount,
		RaisedAmount: c.RaisedAmount,
		Active:       c.Active,
		Coordinator:  c.Coordinator,
		CreatedAt:    c.CreatedAt,
	}
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

type registerCampaignRequest struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	TargetAmount int64  `json:"target_amount"`
}

func (a *App) CampaignsRegister(w http.ResponseWriter, r *http.Request) {
	var req registerCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	caller := middleware.CallerIdentity(r.Context())
	c, err := a.Ledger.RegisterCampaign(caller, req.Name, req.Location, req.Description, req.TargetAmount)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, campaignToDTO(c))
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return
	}
	c, err := a.Ledger.Campaign(id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, campaignToDTO(c))
}

func (a *App) CampaignsDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return
	}
	caller := middleware.CallerIdentity(r.Context())
	if err := a.Ledger.DeactivateCampaign(id, caller); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "active": false})
}
