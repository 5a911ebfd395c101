// Package ledger implements the relief ledger: campaign funding totals,
// per-donor contribution records, relief request state, and the
// owner/coordinator authorization set, mutated under a single lock so every
// operation behaves as one atomic transaction.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"reliefd/internal/domain"
)

// EventSink receives the single notification each successful mutation emits.
// Publish must not block; slow consumers buffer or drop on their side.
type EventSink interface {
	Publish(ev domain.Event)
}

// FundsTransferrer moves withdrawn value to a coordinator. It is the one
// point where control leaves the ledger during an operation, and it is only
// invoked after the ledger state already reflects the withdrawal.
type FundsTransferrer interface {
	Transfer(ctx context.Context, to string, amount int64) error
}

// NopTransferrer settles withdrawals out of band and always succeeds.
type NopTransferrer struct{}

func (NopTransferrer) Transfer(context.Context, string, int64) error { return nil }

// Summary reports the aggregate counters of the ledger.
type Summary struct {
	CampaignCount    int64
	RequestCount     int64
	TotalContributed int64
	Reserve          int64
}

// Ledger is the shared mutable store. All fields are guarded by mu; methods
// never hold the lock while publishing events or transferring funds.
type Ledger struct {
	mu sync.Mutex

	owner        string
	coordinators map[string]struct{}

	campaigns   map[int64]*domain.Campaign
	donations   map[int64][]domain.Donation
	requests    map[int64]*domain.ReliefRequest
	donorTotals map[string]int64

	campaignCount    int64
	requestCount     int64
	totalContributed int64
	reserve          int64

	sink     EventSink
	transfer FundsTransferrer
	clock    func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSink registers the event sink notified on every successful mutation.
func WithSink(sink EventSink) Option {
	return func(l *Ledger) { l.sink = sink }
}

// WithTransferrer sets the value-transfer hook used by Withdraw.
func WithTransferrer(t FundsTransferrer) Option {
	return func(l *Ledger) { l.transfer = t }
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// New creates a ledger owned by the given identity. The owner is fixed for
// the lifetime of the ledger and is the only identity that may grant
// coordinator status.
func New(owner string, opts ...Option) (*Ledger, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("owner identity: %w", domain.ErrInvalidInput)
	}
	l := &Ledger{
		owner:        owner,
		coordinators: make(map[string]struct{}),
		campaigns:    make(map[int64]*domain.Campaign),
		donations:    make(map[int64][]domain.Donation),
		requests:     make(map[int64]*domain.ReliefRequest),
		donorTotals:  make(map[string]int64),
		transfer:     NopTransferrer{},
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Owner returns the identity the ledger was initialized with.
func (l *Ledger) Owner() string { return l.owner }

func (l *Ledger) publish(ev domain.Event) {
	if l.sink != nil {
		l.sink.Publish(ev)
	}
}

// isAuthorized reports whether identity is the owner or a granted
// coordinator. Callers must hold mu.
func (l *Ledger) isAuthorized(identity string) bool {
	if identity == l.owner {
		return true
	}
	_, ok := l.coordinators[identity]
	return ok
}

// RegisterCampaign creates a new campaign coordinated by the caller. Only
// the owner or a granted coordinator may register one.
func (l *Ledger) RegisterCampaign(caller, name, location, description string, targetAmount int64) (domain.Campaign, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(location) == "" {
		return domain.Campaign{}, fmt.Errorf("name and location must be non-empty: %w", domain.ErrInvalidInput)
	}
	if targetAmount <= 0 {
		return domain.Campaign{}, fmt.Errorf("target amount must be positive: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	if !l.isAuthorized(caller) {
		l.mu.Unlock()
		return domain.Campaign{}, fmt.Errorf("register campaign: %w", domain.ErrUnauthorized)
	}
	l.campaignCount++
	c := &domain.Campaign{
		ID:           l.campaignCount,
		Name:         name,
		Location:     location,
		Description:  description,
		TargetAmount: targetAmount,
		Active:       true,
		Coordinator:  caller,
		CreatedAt:    l.clock(),
	}
	l.campaigns[c.ID] = c
	out := *c
	l.mu.Unlock()

	l.publish(domain.Event{
		Kind:       domain.EventCampaignRegistered,
		CampaignID: out.ID,
		Actor:      caller,
		Name:       out.Name,
		Location:   out.Location,
		OccurredAt: out.CreatedAt,
	})
	return out, nil
}

// Contribute records a donation against an active campaign. The four
// mutations (campaign total, global total, donor total, donation list)
// commit together or not at all.
func (l *Ledger) Contribute(campaignID int64, donor string, amount int64) (domain.Donation, error) {
	if strings.TrimSpace(donor) == "" {
		return domain.Donation{}, fmt.Errorf("donor identity: %w", domain.ErrInvalidInput)
	}
	if amount <= 0 {
		return domain.Donation{}, fmt.Errorf("contribution amount must be positive: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	c, ok := l.campaigns[campaignID]
	if !ok {
		l.mu.Unlock()
		return domain.Donation{}, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	if !c.Active {
		l.mu.Unlock()
		return domain.Donation{}, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrCampaignInactive)
	}
	don := domain.Donation{
		Donor:      donor,
		CampaignID: campaignID,
		AmountInt:  amount,
		CreatedAt:  l.clock(),
	}
	c.RaisedAmount += amount
	l.totalContributed += amount
	l.donorTotals[donor] += amount
	l.donations[campaignID] = append(l.donations[campaignID], don)
	l.reserve += amount
	l.mu.Unlock()

	l.publish(domain.Event{
		Kind:       domain.EventContributionReceived,
		CampaignID: campaignID,
		Actor:      donor,
		AmountInt:  amount,
		OccurredAt: don.CreatedAt,
	})
	return don, nil
}

// SubmitRequest records a relief request against an active campaign. Any
// identity may submit one.
func (l *Ledger) SubmitRequest(campaignID int64, requester, resourceType string, quantity int64, urgencyLevel string) (domain.ReliefRequest, error) {
	if strings.TrimSpace(requester) == "" {
		return domain.ReliefRequest{}, fmt.Errorf("requester identity: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(resourceType) == "" {
		return domain.ReliefRequest{}, fmt.Errorf("resource type must be non-empty: %w", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return domain.ReliefRequest{}, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	c, ok := l.campaigns[campaignID]
	if !ok {
		l.mu.Unlock()
		return domain.ReliefRequest{}, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	if !c.Active {
		l.mu.Unlock()
		return domain.ReliefRequest{}, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrCampaignInactive)
	}
	l.requestCount++
	req := &domain.ReliefRequest{
		ID:           l.requestCount,
		CampaignID:   campaignID,
		Requester:    requester,
		ResourceType: resourceType,
		Quantity:     quantity,
		UrgencyLevel: urgencyLevel,
		CreatedAt:    l.clock(),
	}
	l.requests[req.ID] = req
	out := *req
	l.mu.Unlock()

	l.publish(domain.Event{
		Kind:         domain.EventReliefRequested,
		CampaignID:   campaignID,
		RequestID:    out.ID,
		Actor:        requester,
		ResourceType: resourceType,
		OccurredAt:   out.CreatedAt,
	})
	return out, nil
}

// FulfillRequest marks a request fulfilled. The transition happens at most
// once; a second call fails with ErrAlreadyFulfilled.
func (l *Ledger) FulfillRequest(requestID int64, caller string) (domain.ReliefRequest, error) {
	l.mu.Lock()
	if !l.isAuthorized(caller) {
		l.mu.Unlock()
		return domain.ReliefRequest{}, fmt.Errorf("fulfill request: %w", domain.ErrUnauthorized)
	}
	req, ok := l.requests[requestID]
	if !ok {
		l.mu.Unlock()
		return domain.ReliefRequest{}, fmt.Errorf("request %d: %w", requestID, domain.ErrNotFound)
	}
	if req.Fulfilled {
		l.mu.Unlock()
		return domain.ReliefRequest{}, fmt.Errorf("request %d: %w", requestID, domain.ErrAlreadyFulfilled)
	}
	req.Fulfilled = true
	out := *req
	now := l.clock()
	l.mu.Unlock()

	l.publish(domain.Event{
		Kind:       domain.EventReliefFulfilled,
		CampaignID: out.CampaignID,
		RequestID:  out.ID,
		Actor:      caller,
		OccurredAt: now,
	})
	return out, nil
}

// Withdraw debits a campaign and transfers the value to its coordinator.
// Only the exact coordinator may withdraw; the owner gets no bypass. The
// debit is committed before the transfer runs, so a transfer callback that
// re-enters Withdraw observes the reduced balance.
func (l *Ledger) Withdraw(ctx context.Context, campaignID int64, caller string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("withdrawal amount must be positive: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	c, ok := l.campaigns[campaignID]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	if caller != c.Coordinator {
		l.mu.Unlock()
		return fmt.Errorf("withdraw from campaign %d: %w", campaignID, domain.ErrForbidden)
	}
	if amount > c.RaisedAmount || amount > l.reserve {
		l.mu.Unlock()
		return fmt.Errorf("withdraw %d from campaign %d: %w", amount, campaignID, domain.ErrInsufficientFunds)
	}
	c.RaisedAmount -= amount
	l.reserve -= amount
	now := l.clock()
	l.mu.Unlock()

	if err := l.transfer.Transfer(ctx, caller, amount); err != nil {
		// Re-credit so a failed transfer leaves no partial state.
		l.mu.Lock()
		c.RaisedAmount += amount
		l.reserve += amount
		l.mu.Unlock()
		return fmt.Errorf("transfer funds: %w", err)
	}

	l.publish(domain.Event{
		Kind:       domain.EventFundsWithdrawn,
		CampaignID: campaignID,
		Actor:      caller,
		AmountInt:  amount,
		OccurredAt: now,
	})
	return nil
}

// AuthorizeCoordinator grants coordinator status. Only the owner may call
// it; granting an already-authorized identity is a no-op success. There is
// no revocation.
func (l *Ledger) AuthorizeCoordinator(caller, identity string) error {
	if strings.TrimSpace(identity) == "" {
		return fmt.Errorf("coordinator identity: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	if caller != l.owner {
		l.mu.Unlock()
		return fmt.Errorf("authorize coordinator: %w", domain.ErrUnauthorized)
	}
	l.coordinators[identity] = struct{}{}
	now := l.clock()
	l.mu.Unlock()

	l.publish(domain.Event{
		Kind:       domain.EventCoordinatorAuthorized,
		Actor:      identity,
		OccurredAt: now,
	})
	return nil
}

// DeactivateCampaign stops a campaign from accepting contributions and
// requests. Only its coordinator may deactivate it. Deactivating an already
// inactive campaign is a no-op success and emits nothing.
func (l *Ledger) DeactivateCampaign(campaignID int64, caller string) error {
	l.mu.Lock()
	c, ok := l.campaigns[campaignID]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	if caller != c.Coordinator {
		l.mu.Unlock()
		return fmt.Errorf("deactivate campaign %d: %w", campaignID, domain.ErrForbidden)
	}
	if !c.Active {
		l.mu.Unlock()
		return nil
	}
	c.Active = false
	now := l.clock()
	l.mu.Unlock()

	l.publish(domain.Event{
		Kind:       domain.EventCampaignDeactivated,
		CampaignID: campaignID,
		Actor:      caller,
		OccurredAt: now,
	})
	return nil
}

// Campaign returns a copy of the campaign with the given id.
func (l *Ledger) Campaign(campaignID int64) (domain.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.campaigns[campaignID]
	if !ok {
		return domain.Campaign{}, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	return *c, nil
}

// Request returns a copy of the relief request with the given id.
func (l *Ledger) Request(requestID int64) (domain.ReliefRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	req, ok := l.requests[requestID]
	if !ok {
		return domain.ReliefRequest{}, fmt.Errorf("request %d: %w", requestID, domain.ErrNotFound)
	}
	return *req, nil
}

// Donations returns the ordered donation list of a campaign.
func (l *Ledger) Donations(campaignID int64) ([]domain.Donation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.campaigns[campaignID]; !ok {
		return nil, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	list := l.donations[campaignID]
	out := make([]domain.Donation, len(list))
	copy(out, list)
	return out, nil
}

// DonationCount returns how many donations a campaign has received.
func (l *Ledger) DonationCount(campaignID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.campaigns[campaignID]; !ok {
		return 0, fmt.Errorf("campaign %d: %w", campaignID, domain.ErrNotFound)
	}
	return len(l.donations[campaignID]), nil
}

// DonorTotal returns the lifetime contribution total of a donor across all
// campaigns. Unknown donors have a zero total.
func (l *Ledger) DonorTotal(donor string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.donorTotals[donor]
}

// IsCoordinator reports whether identity may register campaigns and fulfill
// requests.
func (l *Ledger) IsCoordinator(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isAuthorized(identity)
}

// Summarize returns the aggregate counters. TotalContributed only ever
// grows; Reserve is the value currently held across all campaigns.
func (l *Ledger) Summarize() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{
		CampaignCount:    l.campaignCount,
		RequestCount:     l.requestCount,
		TotalContributed: l.totalContributed,
		Reserve:          l.reserve,
	}
}
