package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"reliefd/internal/http/handlers"
	"reliefd/internal/middleware"
)

// Options carries the router's cross-cutting settings.
type Options struct {
	JWTSecret       string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
}

// NewRouter wires the relief API. Mutating routes require a bearer token;
// read accessors are open.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Country(opts.CountryLookup),
		middleware.Logger(app.Log),
		chimw.Recoverer,
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	// Read accessors, open to anyone.
	r.Get("/v1/ledger", app.LedgerSummary)
	r.Get("/v1/campaigns/{id}", app.CampaignsGet)
	r.Get("/v1/campaigns/{id}/donations", app.ContributionsList)
	r.Get("/v1/requests/{id}", app.RequestsGet)
	r.Get("/v1/donors/{id}", app.DonorsGet)
	r.Get("/v1/events", app.EventsRecent)

	// Mutations, behind caller authentication.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(opts.JWTSecret))

		r.Post("/v1/campaigns", app.CampaignsRegister)
		r.Post("/v1/campaigns/{id}/contributions", app.ContributionsCreate)
		r.Post("/v1/campaigns/{id}/requests", app.RequestsSubmit)
		r.Post("/v1/campaigns/{id}/withdrawals", app.WithdrawalsCreate)
		r.Post("/v1/campaigns/{id}/deactivate", app.CampaignsDeactivate)
		r.Post("/v1/requests/{id}/fulfill", app.RequestsFulfill)
		r.Post("/v1/coordinators", app.CoordinatorsAuthorize)
	})

	return r
}
