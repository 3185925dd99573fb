package models

import (
	"fmt"
	"strings"
)

// Status is the tier a cutoff falls into relative to the applicant's percentile.
// The numeric value is the severity rank: lower is better.
type Status int

const (
	StatusExact Status = iota
	StatusSafe
	StatusNearMiss
)

// AllStatuses returns every status in severity order.
func AllStatuses() []Status {
	return []Status{StatusExact, StatusSafe, StatusNearMiss}
}

// Rank returns the severity rank of the status.
func (s Status) Rank() int {
	return int(s)
}

// IsValid checks if the status is one of the known tiers.
func (s Status) IsValid() bool {
	return s >= StatusExact && s <= StatusNearMiss
}

// String returns the short machine name of the status.
func (s Status) String() string {
	switch s {
	case StatusExact:
		return "exact"
	case StatusSafe:
		return "safe"
	case StatusNearMiss:
		return "near_miss"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Label returns the display label shown to applicants.
func (s Status) Label() string {
	switch s {
	case StatusExact:
		return "Exact Match"
	case StatusSafe:
		return "Safe"
	case StatusNearMiss:
		return "Near Miss"
	default:
		return s.String()
	}
}

// Description explains the tier in one line.
func (s Status) Description() string {
	switch s {
	case StatusExact:
		return "college cutoff exactly at your percentile"
	case StatusSafe:
		return "cutoff below your score but within the lower range"
	case StatusNearMiss:
		return "cutoff slightly above your score"
	default:
		return ""
	}
}

// ParseStatus converts a machine name or display label back to a Status.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch normalized {
	case "exact", "exact_match":
		return StatusExact, nil
	case "safe":
		return StatusSafe, nil
	case "near_miss", "nearmiss":
		return StatusNearMiss, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// MarshalText encodes the status by its machine name, which also covers
// JSON and YAML encoding.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a machine name or display label.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
