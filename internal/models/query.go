package models

import (
	"math"
	"strings"
)

// Tolerance defaults and limits.
const (
	DefaultUpperTolerance = 2.0
	DefaultLowerTolerance = 5.0
	MaxUpperTolerance     = 10.0
	MinPercentile         = 0.0
	MaxPercentile         = 100.0
)

// Query is a single applicant request against the cutoff table.
type Query struct {
	TargetPercentile float64  `json:"percentile" yaml:"percentile"`
	Category         string   `json:"category" yaml:"category"`
	BranchFilter     []string `json:"branches,omitempty" yaml:"branches,omitempty"`
	CollegeFilter    string   `json:"college,omitempty" yaml:"college,omitempty"`
	UpperTolerance   float64  `json:"buffer" yaml:"buffer"`
	LowerTolerance   float64  `json:"lower_limit" yaml:"lower_limit"`
}

// QueryOption mutates a Query under construction.
type QueryOption func(*Query)

// WithBranches restricts results to branches containing any of the given substrings.
func WithBranches(branches ...string) QueryOption {
	return func(q *Query) {
		q.BranchFilter = append(q.BranchFilter, branches...)
	}
}

// WithCollege restricts results to colleges whose name contains substr.
func WithCollege(substr string) QueryOption {
	return func(q *Query) {
		q.CollegeFilter = substr
	}
}

// WithUpperTolerance sets how far above the target a cutoff may lie.
func WithUpperTolerance(v float64) QueryOption {
	return func(q *Query) {
		q.UpperTolerance = v
	}
}

// WithLowerTolerance sets how far below the target a cutoff may lie.
func WithLowerTolerance(v float64) QueryOption {
	return func(q *Query) {
		q.LowerTolerance = v
	}
}

// NewQuery creates a query with the default tolerances applied.
func NewQuery(percentile float64, category string, opts ...QueryOption) Query {
	q := Query{
		TargetPercentile: percentile,
		Category:         strings.TrimSpace(category),
		UpperTolerance:   DefaultUpperTolerance,
		LowerTolerance:   DefaultLowerTolerance,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Validate checks that the query describes a well-formed, finite window.
func (q Query) Validate() error {
	if math.IsNaN(q.TargetPercentile) || q.TargetPercentile < MinPercentile || q.TargetPercentile > MaxPercentile {
		return ErrInvalidTargetPercentile
	}

	if strings.TrimSpace(q.Category) == "" {
		return ErrEmptyCategory
	}

	if !isFinite(q.UpperTolerance) || !isFinite(q.LowerTolerance) {
		return ErrNonFiniteTolerance
	}

	if q.UpperTolerance < 0 || q.LowerTolerance < 0 {
		return ErrNegativeTolerance
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// WindowLow returns the inclusive lower bound of the tolerance window.
func (q Query) WindowLow() float64 {
	return q.TargetPercentile - q.LowerTolerance
}

// WindowHigh returns the inclusive upper bound of the tolerance window.
func (q Query) WindowHigh() float64 {
	return q.TargetPercentile + q.UpperTolerance
}
