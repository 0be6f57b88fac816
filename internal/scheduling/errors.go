package scheduling

import "errors"

var (
	// ErrNotFound is returned when no request exists for an id.
	ErrNotFound = errors.New("scheduling request not found")

	// ErrInvalidIndex is returned when a slot index is outside the offered slots.
	ErrInvalidIndex = errors.New("invalid slot index")

	// ErrAlreadyScheduled is returned when a reply arrives for a request
	// that already has a confirmed slot.
	ErrAlreadyScheduled = errors.New("scheduling request already scheduled")

	// ErrRequestFailed is returned when a reply arrives for a request that
	// moved to the error state.
	ErrRequestFailed = errors.New("scheduling request failed")

	// ErrDelivery is returned when the notification transport fails to deliver a message.
	ErrDelivery = errors.New("message delivery failed")

	// ErrUpstream is returned when a calendar or contacts provider call fails.
	ErrUpstream = errors.New("upstream provider failed")

	// ErrNotConfigured is returned when an optional collaborator is missing.
	ErrNotConfigured = errors.New("collaborator not configured")
)
