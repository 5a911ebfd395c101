package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"reliefd/internal/archive"
	"reliefd/internal/domain"
	"reliefd/internal/ledger"
)

// App bundles the dependencies the HTTP handlers need. Archive may be nil
// when the service runs without a database.
type App struct {
	Ledger  *ledger.Ledger
	Archive *archive.Archive
	Log     zerolog.Logger
}

func NewApp(l *ledger.Ledger, a *archive.Archive, log zerolog.Logger) *App {
	return &App{Ledger: l, Archive: a, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]any{"error": map[string]string{"code": code, "message": msg}})
}

// domainError maps ledger sentinel errors onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrCampaignInactive):
		a.error(w, http.StatusConflict, "campaign_inactive", err.Error())
	case errors.Is(err, domain.ErrAlreadyFulfilled):
		a.error(w, http.StatusConflict, "already_fulfilled", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		a.error(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	default:
		a.Log.Error().Err(err).Msg("unhandled ledger error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
