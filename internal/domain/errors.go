package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCampaignInactive  = errors.New("campaign inactive")
	ErrAlreadyFulfilled  = errors.New("already fulfilled")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
