// Package models defines the data structures for the college cutoff predictor.
package models

import (
	"math"
	"strings"
)

// Record is one row of the cutoff table: the percentile at which a
// (college, branch, category) combination closed.
type Record struct {
	CollegeName string  `json:"college_name" yaml:"college_name" db:"college_name"`
	Branch      string  `json:"branch" yaml:"branch" db:"branch"`
	Category    string  `json:"category" yaml:"category" db:"category"`
	Rank        int     `json:"rank" yaml:"rank" db:"rank"`
	Percentile  float64 `json:"percentile" yaml:"percentile" db:"percentile"`
}

// NewRecord builds a validated Record. Surrounding whitespace is trimmed
// from the string fields.
func NewRecord(collegeName, branch, category string, rank int, percentile float64) (Record, error) {
	r := Record{
		CollegeName: strings.TrimSpace(collegeName),
		Branch:      strings.TrimSpace(branch),
		Category:    strings.TrimSpace(category),
		Rank:        rank,
		Percentile:  percentile,
	}
	if err := ValidateRecord(r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// ValidateRecord validates a cutoff record.
func ValidateRecord(r Record) error {
	if strings.TrimSpace(r.CollegeName) == "" {
		return ErrEmptyCollegeName
	}

	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}

	if r.Rank < 1 {
		return ErrInvalidRank
	}

	if math.IsNaN(r.Percentile) || r.Percentile < 0 || r.Percentile > 100 {
		return ErrInvalidPercentile
	}

	return nil
}
