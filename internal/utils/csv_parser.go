package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"college-predictor/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidRowData = errors.New("invalid row data")
)

// Normalized column keys.
const (
	ColumnCollegeName = "college name"
	ColumnBranch      = "branch"
	ColumnCategory    = "category"
	ColumnRank        = "rank"
	ColumnPercentile  = "percentile"
)

// RequiredColumns defines the columns that must be present in the CSV, in
// their canonical spelling.
var RequiredColumns = []string{
	"College Name",
	"Branch",
	"Category",
	"Rank",
	"Percentile",
}

// ColumnAliases maps alternative column names to normalized names.
var ColumnAliases = map[string]string{
	// college aliases
	"college":      ColumnCollegeName,
	"college_name": ColumnCollegeName,
	"collegename":  ColumnCollegeName,
	"institute":    ColumnCollegeName,
	"institution":  ColumnCollegeName,

	// branch aliases
	"course":      ColumnBranch,
	"branch name": ColumnBranch,
	"branch_name": ColumnBranch,
	"program":     ColumnBranch,

	// category aliases
	"cat":           ColumnCategory,
	"category code": ColumnCategory,
	"category_code": ColumnCategory,
	"seat type":     ColumnCategory,
	"seat_type":     ColumnCategory,

	// rank aliases
	"cutoff rank":  ColumnRank,
	"cutoff_rank":  ColumnRank,
	"closing rank": ColumnRank,
	"closing_rank": ColumnRank,

	// percentile aliases
	"cutoff":            ColumnPercentile,
	"cutoff percentile": ColumnPercentile,
	"cutoff_percentile": ColumnPercentile,
	"percentile cutoff": ColumnPercentile,
}

// CSVParser handles parsing of cutoff CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// normalizeColumn lowercases a header cell and resolves aliases.
func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// ParseCutoffs parses CSV content into validated records. Loading is all or
// nothing: if any row is malformed the whole table is rejected, and the
// returned error wraps ErrInvalidRowData plus every row failure.
func (p *CSVParser) ParseCutoffs(content []byte) ([]models.Record, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyCSV
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	return p.parseRows(reader.Read)
}

// ParseCutoffsXLSX parses the first worksheet of an Excel workbook with the
// same rules as ParseCutoffs.
func (p *CSVParser) ParseCutoffsXLSX(content []byte) ([]models.Record, error) {
	if len(content) == 0 {
		return nil, ErrEmptyCSV
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyCSV
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCSV
	}

	next := 0
	return p.parseRows(func() ([]string, error) {
		if next >= len(rows) {
			return nil, io.EOF
		}
		row := rows[next]
		next++
		return row, nil
	})
}

// ParseCutoffFile picks the CSV or XLSX parser from the file name.
func ParseCutoffFile(name string, content []byte) ([]models.Record, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return NewCSVParser().ParseCutoffsXLSX(content)
	}
	return NewCSVParser().ParseCutoffs(content)
}

// parseRows consumes a header row then data rows until io.EOF.
func (p *CSVParser) parseRows(read func() ([]string, error)) ([]models.Record, error) {
	header, err := read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, err
	}

	var records []models.Record
	var rowErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		row, err := read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if isBlankRow(row) {
			continue
		}

		record, err := p.parseRow(row)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		records = append(records, record)
	}

	if len(rowErrors) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRowData, errors.Join(rowErrors...))
	}

	if len(records) == 0 {
		return nil, ErrNoDataRows
	}

	return records, nil
}

// buildColumnMapping creates a mapping of normalized column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := normalizeColumn(col)
		// First occurrence wins for duplicated headers
		if _, exists := p.columnMapping[normalized]; !exists {
			p.columnMapping[normalized] = i
		}
	}

	missing := missingColumns(p.columnMapping)
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

func missingColumns[V any](present map[string]V) []string {
	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := present[normalizeColumn(required)]; !ok {
			missing = append(missing, required)
		}
	}
	return missing
}

// parseRow parses a single CSV row into a Record.
func (p *CSVParser) parseRow(row []string) (models.Record, error) {
	getValue := func(column string) (string, error) {
		idx, ok := p.columnMapping[column]
		if !ok {
			return "", fmt.Errorf("column %s not found", column)
		}
		if idx >= len(row) {
			return "", fmt.Errorf("column %s index out of range", column)
		}
		return strings.TrimSpace(row[idx]), nil
	}

	college, err := getValue(ColumnCollegeName)
	if err != nil {
		return models.Record{}, err
	}

	branch, err := getValue(ColumnBranch)
	if err != nil {
		return models.Record{}, err
	}

	category, err := getValue(ColumnCategory)
	if err != nil {
		return models.Record{}, err
	}

	rankStr, err := getValue(ColumnRank)
	if err != nil {
		return models.Record{}, err
	}
	rank, err := parseInt(rankStr)
	if err != nil {
		return models.Record{}, fmt.Errorf("invalid rank: %w", err)
	}

	pctStr, err := getValue(ColumnPercentile)
	if err != nil {
		return models.Record{}, err
	}
	percentile, err := parseFloat(pctStr)
	if err != nil {
		return models.Record{}, fmt.Errorf("invalid percentile: %w", err)
	}

	return models.NewRecord(college, branch, category, rank, percentile)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseFloat parses a percentile string, tolerating a trailing percent sign.
// NaN and infinities are rejected.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove thousands separators
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "1200.0") produced by spreadsheet exports
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		if f != float64(int(f)) {
			return 0, fmt.Errorf("rank %q is not a whole number", s)
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content []byte) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Valid:          false,
		RowCount:       0,
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if len(bytes.TrimSpace(content)) == 0 {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	result.MissingColumns = append(result.MissingColumns, missingColumns(normalizedColumns)...)

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0 && len(result.Errors) == 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid" yaml:"valid"`
	RowCount       int      `json:"row_count" yaml:"row_count"`
	Columns        []string `json:"columns" yaml:"columns"`
	MissingColumns []string `json:"missing_columns" yaml:"missing_columns"`
	Errors         []string `json:"errors" yaml:"errors"`
}
