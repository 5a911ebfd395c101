package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reliefd/internal/domain"
)

const owner = "owner-1"

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	l, err := New(owner, opts...)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return l
}

type capturingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *capturingSink) Publish(ev domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *capturingSink) kinds() []domain.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventKind, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Kind
	}
	return out
}

func TestNewRequiresOwner(t *testing.T) {
	if _, err := New("  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegisterCampaign(t *testing.T) {
	sink := &capturingSink{}
	l := newTestLedger(t, WithSink(sink))

	c, err := l.RegisterCampaign(owner, "Flood Relief", "Padang", "river flooding", 100000)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.ID != 1 {
		t.Fatalf("expected first campaign id 1, got %d", c.ID)
	}
	if !c.Active || c.RaisedAmount != 0 || c.Coordinator != owner {
		t.Fatalf("unexpected campaign state: %+v", c)
	}

	c2, err := l.RegisterCampaign(owner, "Quake Relief", "Lombok", "", 50000)
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if c2.ID != 2 {
		t.Fatalf("expected campaign id 2, got %d", c2.ID)
	}

	kinds := sink.kinds()
	if len(kinds) != 2 || kinds[0] != domain.EventCampaignRegistered {
		t.Fatalf("unexpected events: %v", kinds)
	}
}

func TestRegisterCampaignValidation(t *testing.T) {
	l := newTestLedger(t)

	cases := []struct {
		name     string
		caller   string
		cname    string
		location string
		target   int64
		wantErr  error
	}{
		{"unauthorized caller", "stranger", "Flood", "Padang", 1000, domain.ErrUnauthorized},
		{"empty name", owner, "", "Padang", 1000, domain.ErrInvalidInput},
		{"empty location", owner, "Flood", "   ", 1000, domain.ErrInvalidInput},
		{"zero target", owner, "Flood", "Padang", 0, domain.ErrInvalidInput},
		{"negative target", owner, "Flood", "Padang", -5, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.RegisterCampaign(tc.caller, tc.cname, tc.location, "", tc.target); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if got := l.Summarize().CampaignCount; got != 0 {
		t.Fatalf("rejected registrations must not consume ids, count=%d", got)
	}
}

func TestContributeAccounting(t *testing.T) {
	l := newTestLedger(t)
	c, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 100000)

	if _, err := l.Contribute(c.ID, "donor-a", 40000); err != nil {
		t.Fatalf("contribute a: %v", err)
	}
	if _, err := l.Contribute(c.ID, "donor-b", 70000); err != nil {
		t.Fatalf("contribute b: %v", err)
	}

	got, _ := l.Campaign(c.ID)
	if got.RaisedAmount != 110000 {
		t.Fatalf("raised = %d, want 110000", got.RaisedAmount)
	}
	sum := l.Summarize()
	if sum.TotalContributed != 110000 || sum.Reserve != 110000 {
		t.Fatalf("summary = %+v", sum)
	}
	if l.DonorTotal("donor-a") != 40000 || l.DonorTotal("donor-b") != 70000 {
		t.Fatalf("donor totals = %d / %d", l.DonorTotal("donor-a"), l.DonorTotal("donor-b"))
	}
	if n, _ := l.DonationCount(c.ID); n != 2 {
		t.Fatalf("donation count = %d, want 2", n)
	}
	list, _ := l.Donations(c.ID)
	if len(list) != 2 || list[0].Donor != "donor-a" || list[1].AmountInt != 70000 {
		t.Fatalf("donation list = %+v", list)
	}
}

func TestContributeRejections(t *testing.T) {
	l := newTestLedger(t)
	c, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 100000)

	if _, err := l.Contribute(99, "donor-a", 100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown campaign: %v", err)
	}
	if _, err := l.Contribute(c.ID, "donor-a", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero amount: %v", err)
	}
	if _, err := l.Contribute(c.ID, "", 100); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty donor: %v", err)
	}

	if err := l.DeactivateCampaign(c.ID, owner); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := l.Contribute(c.ID, "donor-a", 100); !errors.Is(err, domain.ErrCampaignInactive) {
		t.Fatalf("inactive campaign: %v", err)
	}

	got, _ := l.Campaign(c.ID)
	if got.RaisedAmount != 0 || l.Summarize().TotalContributed != 0 {
		t.Fatal("rejected contributions must not change totals")
	}
}

func TestConcurrentContributions(t *testing.T) {
	l := newTestLedger(t)
	a, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 1<<40)
	b, _ := l.RegisterCampaign(owner, "Quake Relief", "Lombok", "", 1<<40)

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			target := a.ID
			if w%2 == 1 {
				target = b.ID
			}
			for i := 0; i < perWorker; i++ {
				if _, err := l.Contribute(target, "donor", 3); err != nil {
					t.Errorf("contribute: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	want := int64(workers * perWorker * 3)
	sum := l.Summarize()
	if sum.TotalContributed != want || sum.Reserve != want {
		t.Fatalf("totals = %+v, want %d", sum, want)
	}
	ca, _ := l.Campaign(a.ID)
	cb, _ := l.Campaign(b.ID)
	if ca.RaisedAmount+cb.RaisedAmount != want {
		t.Fatalf("per-campaign sums %d + %d != %d", ca.RaisedAmount, cb.RaisedAmount, want)
	}
	if l.DonorTotal("donor") != want {
		t.Fatalf("donor total = %d, want %d", l.DonorTotal("donor"), want)
	}
}

func TestSubmitAndFulfillRequest(t *testing.T) {
	sink := &capturingSink{}
	l := newTestLedger(t, WithSink(sink))
	c, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 100000)

	req, err := l.SubmitRequest(c.ID, "village-head", "water", 500, "high")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.ID != 1 || req.Fulfilled {
		t.Fatalf("unexpected request: %+v", req)
	}

	// Requesters need no authorization, fulfillment does.
	if _, err := l.FulfillRequest(req.ID, "village-head"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unauthorized fulfill: %v", err)
	}

	done, err := l.FulfillRequest(req.ID, owner)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if !done.Fulfilled {
		t.Fatal("request not marked fulfilled")
	}
	if _, err := l.FulfillRequest(req.ID, owner); !errors.Is(err, domain.ErrAlreadyFulfilled) {
		t.Fatalf("second fulfill: %v", err)
	}
	if _, err := l.FulfillRequest(99, owner); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown request: %v", err)
	}
}

func TestSubmitRequestValidation(t *testing.T) {
	l := newTestLedger(t)
	c, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 100000)

	if _, err := l.SubmitRequest(c.ID, "someone", "", 5, "high"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty resource: %v", err)
	}
	if _, err := l.SubmitRequest(c.ID, "someone", "water", 0, "high"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero quantity: %v", err)
	}
	if _, err := l.SubmitRequest(42, "someone", "water", 5, "high"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown campaign: %v", err)
	}

	if err := l.DeactivateCampaign(c.ID, owner); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := l.SubmitRequest(c.ID, "someone", "water", 5, "high"); !errors.Is(err, domain.ErrCampaignInactive) {
		t.Fatalf("inactive campaign: %v", err)
	}
	if got := l.Summarize().RequestCount; got != 0 {
		t.Fatalf("rejected requests must not consume ids, count=%d", got)
	}

	// Urgency is free text, deliberately unvalidated.
	c2, _ := l.RegisterCampaign(owner, "Quake Relief", "Lombok", "", 100000)
	if _, err := l.SubmitRequest(c2.ID, "someone", "water", 5, "whenever"); err != nil {
		t.Fatalf("free-text urgency rejected: %v", err)
	}
}

type recordingTransferrer struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (r *recordingTransferrer) Transfer(_ context.Context, _ string, amount int64) error {
	r.mu.Lock()
	r.calls = append(r.calls, amount)
	r.mu.Unlock()
	return r.err
}

func TestWithdraw(t *testing.T) {
	transfer := &recordingTransferrer{}
	l := newTestLedger(t, WithTransferrer(transfer))

	coordinator := "coord-1"
	if err := l.AuthorizeCoordinator(owner, coordinator); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	c, _ := l.RegisterCampaign(coordinator, "Flood Relief", "Padang", "", 100000)
	l.Contribute(c.ID, "donor-a", 40000)
	l.Contribute(c.ID, "donor-b", 70000)

	if err := l.Withdraw(context.Background(), c.ID, coordinator, 50000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	got, _ := l.Campaign(c.ID)
	if got.RaisedAmount != 60000 {
		t.Fatalf("raised = %d, want 60000", got.RaisedAmount)
	}
	sum := l.Summarize()
	if sum.Reserve != 60000 {
		t.Fatalf("reserve = %d, want 60000", sum.Reserve)
	}
	if sum.TotalContributed != 110000 {
		t.Fatalf("totalContributed must survive withdrawals, got %d", sum.TotalContributed)
	}
	if len(transfer.calls) != 1 || transfer.calls[0] != 50000 {
		t.Fatalf("transfer calls = %v", transfer.calls)
	}
}

func TestWithdrawRejections(t *testing.T) {
	l := newTestLedger(t)
	coordinator := "coord-1"
	l.AuthorizeCoordinator(owner, coordinator)
	c, _ := l.RegisterCampaign(coordinator, "Flood Relief", "Padang", "", 100000)
	l.Contribute(c.ID, "donor-a", 10000)

	ctx := context.Background()
	if err := l.Withdraw(ctx, 99, coordinator, 100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown campaign: %v", err)
	}
	// The owner does not bypass the coordinator check.
	if err := l.Withdraw(ctx, c.ID, owner, 100); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owner withdraw: %v", err)
	}
	if err := l.Withdraw(ctx, c.ID, coordinator, 10001); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdraw: %v", err)
	}
	if err := l.Withdraw(ctx, c.ID, coordinator, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero amount: %v", err)
	}

	got, _ := l.Campaign(c.ID)
	if got.RaisedAmount != 10000 || l.Summarize().Reserve != 10000 {
		t.Fatal("rejected withdrawals must not change balances")
	}
}

func TestWithdrawTransferFailureRollsBack(t *testing.T) {
	transfer := &recordingTransferrer{err: errors.New("settlement offline")}
	l := newTestLedger(t, WithTransferrer(transfer))
	c, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 100000)
	l.Contribute(c.ID, "donor-a", 10000)

	if err := l.Withdraw(context.Background(), c.ID, owner, 4000); err == nil {
		t.Fatal("expected transfer error")
	}
	got, _ := l.Campaign(c.ID)
	if got.RaisedAmount != 10000 || l.Summarize().Reserve != 10000 {
		t.Fatal("failed transfer must restore balances")
	}
}

// reentrantTransferrer simulates a malicious settlement callback that tries
// a nested withdrawal before the first one returns.
type reentrantTransferrer struct {
	ledger     *Ledger
	campaignID int64
	caller     string
	nestedErr  error
	fired      bool
}

func (r *reentrantTransferrer) Transfer(ctx context.Context, _ string, amount int64) error {
	if !r.fired {
		r.fired = true
		r.nestedErr = r.ledger.Withdraw(ctx, r.campaignID, r.caller, amount)
	}
	return nil
}

func TestWithdrawReentrancy(t *testing.T) {
	transfer := &reentrantTransferrer{}
	l := newTestLedger(t, WithTransferrer(transfer))
	c, _ := l.RegisterCampaign(owner, "Flood Relief", "Padang", "", 100000)
	l.Contribute(c.ID, "donor-a", 10000)

	transfer.ledger = l
	transfer.campaignID = c.ID
	transfer.caller = owner

	// The full balance is withdrawn; the nested attempt inside the transfer
	// callback must see the already-debited balance and fail.
	if err := l.Withdraw(context.Background(), c.ID, owner, 10000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !transfer.fired {
		t.Fatal("transfer callback never ran")
	}
	if !errors.Is(transfer.nestedErr, domain.ErrInsufficientFunds) {
		t.Fatalf("nested withdraw = %v, want ErrInsufficientFunds", transfer.nestedErr)
	}
	got, _ := l.Campaign(c.ID)
	if got.RaisedAmount != 0 {
		t.Fatalf("raised = %d, want 0", got.RaisedAmount)
	}
	if l.Summarize().Reserve != 0 {
		t.Fatalf("reserve = %d, want 0", l.Summarize().Reserve)
	}
}

func TestAuthorizeCoordinator(t *testing.T) {
	l := newTestLedger(t)

	if err := l.AuthorizeCoordinator("stranger", "coord-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-owner authorize: %v", err)
	}
	if err := l.AuthorizeCoordinator(owner, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty identity: %v", err)
	}

	if _, err := l.RegisterCampaign("coord-1", "Flood", "Padang", "", 1000); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("pre-grant register: %v", err)
	}

	if err := l.AuthorizeCoordinator(owner, "coord-1"); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	// Idempotent re-grant.
	if err := l.AuthorizeCoordinator(owner, "coord-1"); err != nil {
		t.Fatalf("re-authorize: %v", err)
	}

	c, err := l.RegisterCampaign("coord-1", "Flood", "Padang", "", 1000)
	if err != nil {
		t.Fatalf("post-grant register: %v", err)
	}
	req, _ := l.SubmitRequest(c.ID, "someone", "water", 5, "high")
	if _, err := l.FulfillRequest(req.ID, "coord-1"); err != nil {
		t.Fatalf("post-grant fulfill: %v", err)
	}
}

func TestDeactivateCampaign(t *testing.T) {
	sink := &capturingSink{}
	l := newTestLedger(t, WithSink(sink))
	coordinator := "coord-1"
	l.AuthorizeCoordinator(owner, coordinator)
	c, _ := l.RegisterCampaign(coordinator, "Flood Relief", "Padang", "", 100000)

	// Not even the owner may deactivate someone else's campaign.
	if err := l.DeactivateCampaign(c.ID, owner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owner deactivate: %v", err)
	}
	got, _ := l.Campaign(c.ID)
	if !got.Active {
		t.Fatal("campaign must stay active after forbidden deactivation")
	}
	if _, err := l.Contribute(c.ID, "donor-a", 100); err != nil {
		t.Fatalf("contribute after forbidden deactivation: %v", err)
	}

	if err := l.DeactivateCampaign(c.ID, coordinator); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	// Repeated deactivation is a no-op success, not an error, and emits no
	// second event.
	before := len(sink.kinds())
	if err := l.DeactivateCampaign(c.ID, coordinator); err != nil {
		t.Fatalf("repeat deactivate: %v", err)
	}
	if len(sink.kinds()) != before {
		t.Fatal("repeat deactivation must not emit")
	}
	if err := l.DeactivateCampaign(42, coordinator); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown campaign: %v", err)
	}
}

func TestReadAccessorsNotFound(t *testing.T) {
	l := newTestLedger(t)
	if _, err := l.Campaign(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("campaign: %v", err)
	}
	if _, err := l.Request(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("request: %v", err)
	}
	if _, err := l.Donations(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("donations: %v", err)
	}
	if _, err := l.DonationCount(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("donation count: %v", err)
	}
}

func TestEventPerOperation(t *testing.T) {
	sink := &capturingSink{}
	l := newTestLedger(t, WithSink(sink), WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}))

	l.AuthorizeCoordinator(owner, "coord-1")
	c, _ := l.RegisterCampaign("coord-1", "Flood Relief", "Padang", "", 100000)
	l.Contribute(c.ID, "donor-a", 500)
	req, _ := l.SubmitRequest(c.ID, "someone", "water", 5, "high")
	l.FulfillRequest(req.ID, "coord-1")
	l.Withdraw(context.Background(), c.ID, "coord-1", 200)
	l.DeactivateCampaign(c.ID, "coord-1")

	want := []domain.EventKind{
		domain.EventCoordinatorAuthorized,
		domain.EventCampaignRegistered,
		domain.EventContributionReceived,
		domain.EventReliefRequested,
		domain.EventReliefFulfilled,
		domain.EventFundsWithdrawn,
		domain.EventCampaignDeactivated,
	}
	got := sink.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// Failures emit nothing.
	before := len(sink.kinds())
	l.Contribute(c.ID, "donor-a", 500) // inactive now
	l.FulfillRequest(req.ID, "coord-1")
	if len(sink.kinds()) != before {
		t.Fatal("failed operations must not emit")
	}
}
