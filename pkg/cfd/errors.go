package cfd

import "errors"

// Sentinel errors.
var (
	// ErrInvalidTimestamp marks a single order-phase entry that could not be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrMalformedAxisConfig marks a bucket axis that cannot be generated.
	ErrMalformedAxisConfig = errors.New("malformed axis config")
	// ErrUnknownPhase is returned by ParsePhase for unrecognized keys.
	ErrUnknownPhase = errors.New("unknown phase")
)
