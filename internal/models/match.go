package models

import (
	"encoding/json"
	"time"
)

// Match is a record that survived filtering, tagged with its status.
type Match struct {
	Record Record
	Status Status
}

// matchJSON is the flattened wire form of a Match.
type matchJSON struct {
	CollegeName string  `json:"college_name" yaml:"college_name"`
	Branch      string  `json:"branch" yaml:"branch"`
	Category    string  `json:"category" yaml:"category"`
	Rank        int     `json:"rank" yaml:"rank"`
	Percentile  float64 `json:"percentile" yaml:"percentile"`
	Status      Status  `json:"status" yaml:"status"`
	StatusLabel string  `json:"status_label" yaml:"status_label"`
}

func (m Match) flatten() matchJSON {
	return matchJSON{
		CollegeName: m.Record.CollegeName,
		Branch:      m.Record.Branch,
		Category:    m.Record.Category,
		Rank:        m.Record.Rank,
		Percentile:  m.Record.Percentile,
		Status:      m.Status,
		StatusLabel: m.Status.Label(),
	}
}

// MarshalJSON flattens the record fields alongside the status.
func (m Match) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.flatten())
}

// MarshalYAML uses the same flattened form as MarshalJSON.
func (m Match) MarshalYAML() (interface{}, error) {
	return m.flatten(), nil
}

// UnmarshalJSON reads the flattened wire form.
func (m *Match) UnmarshalJSON(data []byte) error {
	var raw matchJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Record = Record{
		CollegeName: raw.CollegeName,
		Branch:      raw.Branch,
		Category:    raw.Category,
		Rank:        raw.Rank,
		Percentile:  raw.Percentile,
	}
	m.Status = raw.Status
	return nil
}

// CollegeGroup is a run of consecutive matches for one college, used for display.
type CollegeGroup struct {
	CollegeName string  `json:"college_name" yaml:"college_name"`
	Matches     []Match `json:"matches" yaml:"matches"`
}

// Result is the full answer to a query.
type Result struct {
	RequestID  string         `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Query      Query          `json:"query" yaml:"query"`
	WindowLow  float64        `json:"window_low" yaml:"window_low"`
	WindowHigh float64        `json:"window_high" yaml:"window_high"`
	Total      int            `json:"total" yaml:"total"`
	Counts     map[string]int `json:"counts" yaml:"counts"`
	Matches    []Match        `json:"matches" yaml:"-"`
	Groups     []CollegeGroup `json:"groups" yaml:"groups"`
	SnapshotAt time.Time      `json:"snapshot_loaded_at" yaml:"snapshot_loaded_at"`
}

// IsEmpty reports whether no cutoff matched.
func (r *Result) IsEmpty() bool {
	return r.Total == 0
}
