package workflow

import "errors"

var (
	// ErrNoWeight is returned when neither variety weight is positive.
	ErrNoWeight = errors.New("at least one variety weight must be greater than zero")
	// ErrNoCrates is returned when neither crate count is positive.
	ErrNoCrates = errors.New("at least one crate count must be greater than zero")
)

// ValidateCapture enforces the weight capture gate: at least one of the two
// variety weights must be positive AND at least one of the two crate counts
// must be positive. The two guards are independent - a positive weight with
// zero crates still fails, before any write is attempted.
func ValidateCapture(fuerteWeight float64, fuerteCrates int, hassWeight float64, hassCrates int) error {
	if fuerteWeight <= 0 && hassWeight <= 0 {
		return ErrNoWeight
	}
	if fuerteCrates <= 0 && hassCrates <= 0 {
		return ErrNoCrates
	}
	return nil
}
