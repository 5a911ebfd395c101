package handlers

import (
	"encoding/json"
	"net/http"

	"reliefd/internal/middleware"
)

type contributeRequest struct {
	Amount int64 `json:"amount"`
}

func (a *App) ContributionsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return
	}
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	donor := middleware.CallerIdentity(r.Context())
	don, err := a.Ledger.Contribute(id, donor, req.Amount)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if country := middleware.CountryFromContext(r.Context()); country != "" {
		a.Log.Info().Str("donor", donor).Str("country", country).Int64("amount", don.AmountInt).Msg("contribution received")
	}
	a.json(w, http.StatusCreated, map[string]any{
		"campaign_id": don.CampaignID,
		"donor":       don.Donor,
		"amount":      don.AmountInt,
		"created_at":  don.CreatedAt,
	})
}

func (a *App) ContributionsList(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return
	}
	list, err := a.Ledger.Donations(id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(list))
	for _, don := range list {
		items = append(items, map[string]any{
			"donor":      don.Donor,
			"amount":     don.AmountInt,
			"created_at": don.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
