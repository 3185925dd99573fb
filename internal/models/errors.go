package models

import (
	"errors"
)

// Common errors
var (
	ErrEmptyCollegeName        = errors.New("college name cannot be empty")
	ErrEmptyCategory           = errors.New("category cannot be empty")
	ErrInvalidRank             = errors.New("rank must be at least 1")
	ErrInvalidPercentile       = errors.New("percentile must be between 0 and 100")
	ErrInvalidTargetPercentile = errors.New("target percentile must be between 0 and 100")
	ErrNegativeTolerance       = errors.New("tolerance cannot be negative")
	ErrNonFiniteTolerance      = errors.New("tolerance must be a finite number")
	ErrUpperToleranceTooLarge  = errors.New("upper tolerance exceeds the allowed maximum")
	ErrInvalidStatus           = errors.New("invalid status")
)

// IsValidationError reports whether err is one of the input validation errors.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyCollegeName,
		ErrEmptyCategory,
		ErrInvalidRank,
		ErrInvalidPercentile,
		ErrInvalidTargetPercentile,
		ErrNegativeTolerance,
		ErrNonFiniteTolerance,
		ErrUpperToleranceTooLarge,
		ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
