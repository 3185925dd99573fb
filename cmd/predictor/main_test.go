package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `College Name,Branch,Category,Rank,Percentile
CollegeA,Computer Engineering,OPEN,100,90.00
CollegeA,Mechanical Engineering,OPEN,200,88.00
CollegeB,Computer Engineering,OPEN,50,91.50
CollegeB,Computer Engineering,OBC,80,89.00
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cutoffs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CUTOFF_SOURCE", "file")
	t.Setenv("STATUS_ORDER", "severity")
	t.Setenv("DEFAULT_BUFFER", "2")
	t.Setenv("LOWER_TOLERANCE", "5")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredictText(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	out, err := run(t, "predict", "--csv", path, "-p", "90", "-c", "open")
	require.NoError(t, err)

	assert.Contains(t, out, "3 options found (within +2.0 / -5.0 range)")
	assert.Contains(t, out, "- Computer Engineering (OPEN): Rank 100, Percentile 90.00 → Exact Match")
	assert.Contains(t, out, "- Mechanical Engineering (OPEN): Rank 200, Percentile 88.00 → Safe")
	assert.Contains(t, out, "- Computer Engineering (OPEN): Rank 50, Percentile 91.50 → Near Miss")
}

func TestPredictJSONWithFilters(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	out, err := run(t, "predict", "--csv", path, "-f", "json",
		"-p", "90", "-c", "OPEN", "-b", "computer", "--college", "collegeb", "--buffer", "1.5")
	require.NoError(t, err)

	var result struct {
		Total   int `json:"total"`
		Matches []struct {
			CollegeName string `json:"college_name"`
			Status      string `json:"status"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "CollegeB", result.Matches[0].CollegeName)
	assert.Equal(t, "near_miss", result.Matches[0].Status)
}

func TestPredictNoMatches(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	out, err := run(t, "predict", "--csv", path, "-p", "50", "-c", "OPEN")
	require.NoError(t, err)
	assert.Contains(t, out, "No colleges found in this range.")
}

func TestPredictRejectsLargeBuffer(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	_, err := run(t, "predict", "--csv", path, "-p", "90", "-c", "OPEN", "--buffer", "12")
	assert.Error(t, err)
}

func TestPredictLabelOrder(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	out, err := run(t, "predict", "--csv", path, "-f", "json", "-p", "90", "-c", "OPEN", "--order", "label")
	require.NoError(t, err)

	var result struct {
		Matches []struct {
			Status string `json:"status"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Matches, 3)
	assert.Equal(t, "exact", result.Matches[0].Status)
	assert.Equal(t, "near_miss", result.Matches[1].Status)
	assert.Equal(t, "safe", result.Matches[2].Status)
}

func TestPredictMissingFile(t *testing.T) {
	_, err := run(t, "predict", "--csv", filepath.Join(t.TempDir(), "none.csv"), "-p", "90", "-c", "OPEN")
	assert.Error(t, err)
}

func TestPredictCSVFlagOverridesConfiguredSource(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	t.Setenv("CUTOFF_SOURCE", "s3")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("STATUS_ORDER", "severity")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"predict", "--csv", path, "-p", "90", "-c", "OPEN"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "3 options found")
}

func TestCategoriesAndBranches(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	out, err := run(t, "categories", "--csv", path)
	require.NoError(t, err)
	assert.Equal(t, "OBC\nOPEN\n", out)

	out, err = run(t, "branches", "--csv", path, "-f", "json")
	require.NoError(t, err)
	var branches []string
	require.NoError(t, json.Unmarshal([]byte(out), &branches))
	assert.Equal(t, []string{"Computer Engineering", "Mechanical Engineering"}, branches)
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", writeCSV(t, sampleCSV))
	require.NoError(t, err)
	assert.Contains(t, out, "rows: 4")
	assert.Contains(t, out, "ok")

	out, err = run(t, "validate", writeCSV(t, "College Name,Branch,Rank\nA,CS,1\n"))
	assert.Error(t, err)
	assert.Contains(t, out, "missing columns")

	out, err = run(t, "validate", writeCSV(t, "College Name,Branch,Category,Rank,Percentile\nA,CS,OPEN,abc,90\n"))
	assert.Error(t, err)
	assert.Contains(t, out, "error:")
}
