package domain

import "time"

// Donation is an immutable contribution record. Donations are appended to a
// campaign's list when accepted and never modified or removed afterwards.
type Donation struct {
	Donor      string
	CampaignID int64
	AmountInt  int64
	CreatedAt  time.Time
}
