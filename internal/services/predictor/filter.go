// Package predictor classifies cutoff rows against an applicant's percentile.
package predictor

import (
	"fmt"
	"sort"
	"strings"

	"college-predictor/internal/models"
)

// Order selects how matches are ranked by status.
type Order int

const (
	// OrderSeverity ranks Exact, then Safe, then NearMiss.
	OrderSeverity Order = iota
	// OrderLabel ranks by display label alphabetically (Exact Match, Near Miss, Safe).
	OrderLabel
)

// ParseOrder parses the STATUS_ORDER config value.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "severity", "rank":
		return OrderSeverity, nil
	case "label", "alphabetical":
		return OrderLabel, nil
	}
	return OrderSeverity, fmt.Errorf("unknown status order %q", s)
}

// String returns the config spelling of the order.
func (o Order) String() string {
	if o == OrderLabel {
		return "label"
	}
	return "severity"
}

// less compares two statuses under this order.
func (o Order) less(a, b models.Status) bool {
	if o == OrderLabel {
		return a.Label() < b.Label()
	}
	return a.Rank() < b.Rank()
}

// Classify returns the status of percentile p for query q, or false when p
// falls outside the inclusive tolerance window. Equality is exact; callers
// with noisy floats should round before calling.
func Classify(p float64, q models.Query) (models.Status, bool) {
	t := q.TargetPercentile
	if p < t-q.LowerTolerance || p > t+q.UpperTolerance {
		return 0, false
	}

	switch {
	case p < t:
		return models.StatusSafe, true
	case p == t:
		return models.StatusExact, true
	default:
		return models.StatusNearMiss, true
	}
}

// Filter applies q to records using severity ordering. It never modifies
// records and returns a fresh slice.
func Filter(records []models.Record, q models.Query) []models.Match {
	return FilterOrdered(records, q, OrderSeverity)
}

// FilterOrdered is Filter with an explicit status order.
func FilterOrdered(records []models.Record, q models.Query, order Order) []models.Match {
	branches := lowerNonBlank(q.BranchFilter)
	college := strings.ToLower(strings.TrimSpace(q.CollegeFilter))

	matches := make([]models.Match, 0)
	for _, r := range records {
		if !strings.EqualFold(r.Category, q.Category) {
			continue
		}

		status, ok := Classify(r.Percentile, q)
		if !ok {
			continue
		}

		if len(branches) > 0 && !containsAny(strings.ToLower(r.Branch), branches) {
			continue
		}

		if college != "" && !strings.Contains(strings.ToLower(r.CollegeName), college) {
			continue
		}

		matches = append(matches, models.Match{Record: r, Status: status})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Status != b.Status {
			return order.less(a.Status, b.Status)
		}
		if a.Record.CollegeName != b.Record.CollegeName {
			return a.Record.CollegeName < b.Record.CollegeName
		}
		return a.Record.Percentile > b.Record.Percentile
	})

	return matches
}

// GroupByCollege splits an ordered match list into runs of the same
// college. A college that appears under two statuses yields two groups.
func GroupByCollege(matches []models.Match) []models.CollegeGroup {
	groups := make([]models.CollegeGroup, 0)
	for _, m := range matches {
		n := len(groups)
		if n > 0 && groups[n-1].CollegeName == m.Record.CollegeName {
			groups[n-1].Matches = append(groups[n-1].Matches, m)
			continue
		}
		groups = append(groups, models.CollegeGroup{
			CollegeName: m.Record.CollegeName,
			Matches:     []models.Match{m},
		})
	}
	return groups
}

// CountByStatus tallies matches per status machine name.
func CountByStatus(matches []models.Match) map[string]int {
	counts := make(map[string]int, len(models.AllStatuses()))
	for _, s := range models.AllStatuses() {
		counts[s.String()] = 0
	}
	for _, m := range matches {
		counts[m.Status.String()]++
	}
	return counts
}

func lowerNonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
