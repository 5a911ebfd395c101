package handlers

import (
	"encoding/json"
	"net/http"

	"reliefd/internal/middleware"
)

type authorizeCoordinatorRequest struct {
	Identity string `json:"identity"`
}

func (a *App) CoordinatorsAuthorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeCoordinatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	caller := middleware.CallerIdentity(r.Context())
	if err := a.Ledger.AuthorizeCoordinator(caller, req.Identity); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"identity": req.Identity, "authorized": true})
}
