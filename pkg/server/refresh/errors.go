package refresh

import "errors"

var (
	// ErrInFlight is returned when a refresh is requested while another
	// cycle is still running.
	ErrInFlight = errors.New("refresh already in flight")

	// ErrBadManualRate is returned for manual overrides that are not
	// positive numbers.
	ErrBadManualRate = errors.New("manual rate must be positive")
)
