package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateNonNegativeDuration rejects negative durations. Zero is allowed and
// usually means "no limit".
func ValidateNonNegativeDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("duration must be non-negative, got %v", d)
	}
	return nil
}

// ValidateIntRange checks that value lies within [min, max].
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if value < min || value > max {
		return fmt.Errorf("value %d is outside range [%d, %d]", value, min, max)
	}
	return nil
}
