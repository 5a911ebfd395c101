package relief

import "time"

// Campaign mirrors the campaign resource served by the relief API.
type Campaign struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	TargetAmount int64     `json:"target_amount"`
	RaisedAmount int64     `json:"raised_amount"`
	Active       bool      `json:"active"`
	Coordinator  string    `json:"coordinator"`
	CreatedAt    time.Time `json:"created_at"`
}

// Request mirrors the relief request resource.
type Request struct {
	ID           int64     `json:"id"`
	CampaignID   int64     `json:"campaign_id"`
	Requester    string    `json:"requester"`
	ResourceType string    `json:"resource_type"`
	Quantity     int64     `json:"quantity"`
	UrgencyLevel string    `json:"urgency_level"`
	Fulfilled    bool      `json:"fulfilled"`
	CreatedAt    time.Time `json:"created_at"`
}

// Donation is one entry of a campaign's donation list.
type Donation struct {
	Donor     string    `json:"donor"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the aggregate ledger view.
type Summary struct {
	CampaignCount    int64 `json:"campaign_count"`
	RequestCount     int64 `json:"request_count"`
	TotalContributed int64 `json:"total_contributed"`
	Reserve          int64 `json:"reserve"`
}

// NewCampaign is the payload for registering a campaign.
type NewCampaign struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	TargetAmount int64  `json:"target_amount"`
}

// NewRequest is the payload for submitting a relief request.
type NewRequest struct {
	ResourceType string `json:"resource_type"`
	Quantity     int64  `json:"quantity"`
	UrgencyLevel string `json:"urgency_level"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
