// Package handlers provides HTTP and Lambda handlers for the college cutoff predictor.
package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"college-predictor/internal/models"
)

// Request parsing errors
var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrNonFiniteNumber  = errors.New("number must be finite")
)

// QueryDefaults are applied when the request leaves a tolerance unset.
type QueryDefaults struct {
	Buffer         float64
	LowerTolerance float64
}

// DefaultQueryDefaults returns the standard tolerances.
func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{
		Buffer:         models.DefaultUpperTolerance,
		LowerTolerance: models.DefaultLowerTolerance,
	}
}

// PredictRequest is the JSON body accepted by the predict endpoints.
type PredictRequest struct {
	Percentile *float64 `json:"percentile"`
	Category   string   `json:"category"`
	Branches   []string `json:"branches,omitempty"`
	College    string   `json:"college,omitempty"`
	Buffer     *float64 `json:"buffer,omitempty"`
	LowerLimit *float64 `json:"lower_limit,omitempty"`
}

// ToQuery converts the request to a validated query.
func (r PredictRequest) ToQuery(d QueryDefaults) (models.Query, error) {
	if r.Percentile == nil {
		return models.Query{}, fmt.Errorf("%w: percentile", ErrMissingParameter)
	}
	if strings.TrimSpace(r.Category) == "" {
		return models.Query{}, fmt.Errorf("%w: category", ErrMissingParameter)
	}

	buffer := d.Buffer
	if r.Buffer != nil {
		buffer = *r.Buffer
	}
	lower := d.LowerTolerance
	if r.LowerLimit != nil {
		lower = *r.LowerLimit
	}

	q := models.NewQuery(*r.Percentile, r.Category,
		models.WithBranches(r.Branches...),
		models.WithCollege(strings.TrimSpace(r.College)),
		models.WithUpperTolerance(buffer),
		models.WithLowerTolerance(lower),
	)
	return q, validateSurfaceQuery(q)
}

// ParseQuery builds a query from URL parameters: percentile, category,
// branch (repeatable), college, buffer and lower.
func ParseQuery(values url.Values, d QueryDefaults) (models.Query, error) {
	req := PredictRequest{
		Category: values.Get("category"),
		College:  values.Get("college"),
	}

	for _, b := range values["branch"] {
		if strings.TrimSpace(b) != "" {
			req.Branches = append(req.Branches, b)
		}
	}

	var err error
	if req.Percentile, err = optionalFloat(values, "percentile"); err != nil {
		return models.Query{}, err
	}
	if req.Buffer, err = optionalFloat(values, "buffer"); err != nil {
		return models.Query{}, err
	}
	if req.LowerLimit, err = optionalFloat(values, "lower"); err != nil {
		return models.Query{}, err
	}

	return req.ToQuery(d)
}

func optionalFloat(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, ErrNonFiniteNumber)
	}
	return &f, nil
}

// validateSurfaceQuery applies the core checks plus the user-facing cap on
// the upper tolerance.
func validateSurfaceQuery(q models.Query) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if q.UpperTolerance > models.MaxUpperTolerance {
		return fmt.Errorf("%w: %v > %v", models.ErrUpperToleranceTooLarge, q.UpperTolerance, models.MaxUpperTolerance)
	}
	return nil
}

// IsBadRequest reports whether err stems from invalid client input.
func IsBadRequest(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingParameter) || errors.Is(err, ErrNonFiniteNumber) || models.IsValidationError(err) {
		return true
	}
	var numErr *strconv.NumError
	return errors.As(err, &numErr)
}
