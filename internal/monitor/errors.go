package monitor

import "errors"

var (
	// ErrStoreNotReady reports that the connectivity gate is not in the
	// ready state; the caller may retry once connectivity returns.
	ErrStoreNotReady = errors.New("document store not ready")

	// ErrUserMismatch reports that the supplied user id does not match
	// the authenticated caller. Never retried.
	ErrUserMismatch = errors.New("user id mismatch")

	ErrConditionNotFound  = errors.New("condition not found")
	ErrNotMonitorable     = errors.New("diagnosis not eligible for monitoring")
	ErrInvalidFrequency   = errors.New("invalid check-in frequency")
	ErrInvalidStatus      = errors.New("invalid condition status")
	ErrInvalidImprovement = errors.New("invalid improvement verdict")
)

// isPermanent reports whether an error must surface immediately
// instead of consuming retry attempts.
func isPermanent(err error) bool {
	return errors.Is(err, ErrUserMismatch) ||
		errors.Is(err, ErrConditionNotFound) ||
		errors.Is(err, ErrNotMonitorable) ||
		errors.Is(err, ErrInvalidFrequency) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidImprovement)
}
