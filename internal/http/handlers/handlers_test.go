package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"reliefd/internal/ledger"
	"reliefd/internal/middleware"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	l, err := ledger.New("owner-1")
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return NewApp(l, nil, zerolog.Nop())
}

func requestWithID(method, target, id, caller string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if caller != "" {
		ctx = middleware.ContextWithCaller(ctx, caller)
	}
	return req.WithContext(ctx)
}

func TestContributionsCreateRejectsBadPayload(t *testing.T) {
	app := newTestApp(t)
	app.Ledger.RegisterCampaign("owner-1", "Flood", "Padang", "", 1000)

	rr := httptest.NewRecorder()
	app.ContributionsCreate(rr, requestWithID(http.MethodPost, "/v1/campaigns/1/contributions", "1", "donor-a", "{not json"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad payload status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.ContributionsCreate(rr, requestWithID(http.MethodPost, "/v1/campaigns/abc/contributions", "abc", "donor-a", `{"amount":10}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.ContributionsCreate(rr, requestWithID(http.MethodPost, "/v1/campaigns/1/contributions", "1", "donor-a", `{"amount":-5}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative amount status = %d", rr.Code)
	}
}

func TestCampaignsGetUnknownID(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.CampaignsGet(rr, requestWithID(http.MethodGet, "/v1/campaigns/9", "9", "", ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestContributionsListEmptyCampaign(t *testing.T) {
	app := newTestApp(t)
	app.Ledger.RegisterCampaign("owner-1", "Flood", "Padang", "", 1000)

	rr := httptest.NewRecorder()
	app.ContributionsList(rr, requestWithID(http.MethodGet, "/v1/campaigns/1/donations", "1", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, `"count":0`) {
		t.Fatalf("body = %s", body)
	}
}

func TestEventsRecentWithoutArchive(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.EventsRecent(rr, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}
