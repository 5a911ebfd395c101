package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) LedgerSummary(w http.ResponseWriter, r *http.Request) {
	sum := a.Ledger.Summarize()
	a.json(w, http.StatusOK, map[string]any{
		"campaign_count":    sum.CampaignCount,
		"request_count":     sum.RequestCount,
		"total_contributed": sum.TotalContributed,
		"reserve":           sum.Reserve,
	})
}

func (a *App) DonorsGet(w http.ResponseWriter, r *http.Request) {
	donor := chi.URLParam(r, "id")
	if donor == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donor identity")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"donor":          donor,
		"lifetime_total": a.Ledger.DonorTotal(donor),
	})
}

// EventsRecent serves the journaled event feed. Without a database the
// archive is disabled and the feed is unavailable.
func (a *App) EventsRecent(w http.ResponseWriter, r *http.Request) {
	if a.Archive == nil {
		a.error(w, http.StatusServiceUnavailable, "archive_disabled", "event archive is not configured")
		return
	}
	items, err := a.Archive.ListRecent(r.Context(), 20)
	if err != nil {
		a.Log.Error().Err(err).Msg("list events")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load events")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
