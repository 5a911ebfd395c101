package handlers

import (
	"encoding/json"
	"net/http"

	"reliefd/internal/middleware"
)

type withdrawRequest struct {
	Amount int64 `json:"amount"`
}

func (a *App) WithdrawalsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	caller := middleware.CallerIdentity(r.Context())
	if err := a.Ledger.Withdraw(r.Context(), id, caller, req.Amount); err != nil {
		a.domainError(w, err)
		return
	}
	c, err := a.Ledger.Campaign(id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"campaign_id":   id,
		"withdrawn":     req.Amount,
		"raised_amount": c.RaisedAmount,
	})
}
