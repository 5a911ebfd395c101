package domain

import "time"

// ReliefRequest records a need for a resource against a campaign. Anyone may
// submit one; fulfillment flips the flag once and is never undone.
type ReliefRequest struct {
	ID           int64
	CampaignID   int64
	Requester    string
	ResourceType string
	Quantity     int64
	UrgencyLevel string
	Fulfilled    bool
	CreatedAt    time.Time
}
