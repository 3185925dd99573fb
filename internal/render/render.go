// Package render formats prediction results for terminals and files.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"college-predictor/internal/models"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// Result writes r to w in the given format.
func Result(w io.Writer, format string, r *models.Result) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return Text(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML, "yml":
		return YAML(w, r)
	}
	return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats(), ", "))
}

// Text writes the human-readable listing: a header with the match count and
// window, a legend, then one section per college.
func Text(w io.Writer, r *models.Result) error {
	tw := &errWriter{w: w}

	tw.printf("%d options found (within +%s / -%s range)\n",
		r.Total, trimFloat(r.Query.UpperTolerance), trimFloat(r.Query.LowerTolerance))
	for _, s := range models.AllStatuses() {
		tw.printf("  %-11s = %s\n", s.Label(), s.Description())
	}

	if r.IsEmpty() {
		tw.printf("\nNo colleges found in this range.\n")
		return tw.err
	}

	for _, g := range r.Groups {
		tw.printf("\n%s\n%s\n", g.CollegeName, strings.Repeat("-", len(g.CollegeName)))
		for _, m := range g.Matches {
			tw.printf("- %s (%s): Rank %d, Percentile %.2f → %s\n",
				m.Record.Branch, m.Record.Category, m.Record.Rank, m.Record.Percentile, m.Status.Label())
		}
	}

	return tw.err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func YAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// List writes one value per line in text format, or the slice in JSON/YAML.
func List(w io.Writer, format string, values []string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		tw := &errWriter{w: w}
		for _, v := range values {
			tw.printf("%s\n", v)
		}
		return tw.err
	case FormatJSON:
		return JSON(w, values)
	case FormatYAML, "yml":
		return YAML(w, values)
	}
	return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats(), ", "))
}

// trimFloat prints 2 as "2.0" and 2.5 as "2.5".
func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
