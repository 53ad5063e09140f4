package services

import "errors"

// Client-correctable errors. None of these indicate corrupted internal
// state; controllers map them onto HTTP status codes.
var (
	ErrAlreadyQueued     = errors.New("player is already in queue")
	ErrAlreadyApplied    = errors.New("player has already applied to this listing")
	ErrAlreadyResolved   = errors.New("this request was already handled")
	ErrNotOwner          = errors.New("caller does not own this listing")
	ErrListingNotFound   = errors.New("listing not found")
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrValidation        = errors.New("invalid request")
)
