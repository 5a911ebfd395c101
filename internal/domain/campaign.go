package domain

import "time"

// Campaign is a registered disaster relief effort with a funding target.
// Amounts are integer minor units (cents).
type Campaign struct {
	ID           int64
	Name         string
	Location     string
	Description  string
	TargetAmount int64
	RaisedAmount int64
	Active       bool
	Coordinator  string
	CreatedAt    time.Time
}
