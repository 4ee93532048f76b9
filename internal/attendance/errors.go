package attendance

import "errors"

// Validation failures surfaced to callers. Anything else coming out of the
// services is a storage fault and must not leak internal detail.
var (
	ErrCodeRequired  = errors.New("user code is required")
	ErrWeekend       = errors.New("attendance not allowed on weekends")
	ErrOutsideWindow = errors.New("check-in allowed between 7:00 AM and 8:30 AM")
	ErrUnknownCode   = errors.New("invalid user code")
	ErrAlreadyMarked = errors.New("already checked in today")
	ErrBadPeriod     = errors.New("year and month are required")
)
