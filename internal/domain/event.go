package domain

import "time"

// EventKind identifies which ledger operation produced an event.
type EventKind string

const (
	EventCampaignRegistered    EventKind = "campaign_registered"
	EventContributionReceived  EventKind = "contribution_received"
	EventReliefRequested       EventKind = "relief_requested"
	EventReliefFulfilled       EventKind = "relief_fulfilled"
	EventFundsWithdrawn        EventKind = "funds_withdrawn"
	EventCoordinatorAuthorized EventKind = "coordinator_authorized"
	EventCampaignDeactivated   EventKind = "campaign_deactivated"
)

// Event is the single notification a successful ledger operation emits.
// Failed operations emit nothing. Fields not meaningful for a given kind
// are left zero.
type Event struct {
	Kind         EventKind
	CampaignID   int64
	RequestID    int64
	Actor        string
	AmountInt    int64
	Name         string
	Location     string
	ResourceType string
	OccurredAt   time.Time
}
