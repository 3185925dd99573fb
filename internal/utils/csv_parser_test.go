package utils_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-predictor/internal/models"
	"college-predictor/internal/utils"
)

func TestCSVParser_ValidFile(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
COEP Technological University,Computer Engineering,OPEN,120,99.85
VJTI Mumbai,Information Technology,OBC,450,98.20`

	parser := utils.NewCSVParser()
	records, err := parser.ParseCutoffs([]byte(csvContent))

	require.NoError(t, err)
	require.Len(t, records, 2, "Expected 2 records")

	assert.Equal(t, models.Record{
		CollegeName: "COEP Technological University",
		Branch:      "Computer Engineering",
		Category:    "OPEN",
		Rank:        120,
		Percentile:  99.85,
	}, records[0])
	assert.Equal(t, "OBC", records[1].Category)
}

func TestCSVParser_ColumnAliasesAndOrder(t *testing.T) {
	csvContent := `percentile,rank,category,course,college
91.5,50,OPEN,Civil Engineering,PICT Pune`

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PICT Pune", records[0].CollegeName)
	assert.Equal(t, "Civil Engineering", records[0].Branch)
	assert.Equal(t, 91.5, records[0].Percentile)
}

func TestCSVParser_HeaderCaseAndBOM(t *testing.T) {
	csvContent := "\ufeffCOLLEGE NAME, branch ,Category,RANK,Percentile\nA,CS,OPEN,1,90\n"

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCSVParser_NumberFormats(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
A,CS,OPEN,"1,200",90%
B,CS,OPEN,1500.0,88.75`

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1200, records[0].Rank)
	assert.Equal(t, 90.0, records[0].Percentile)
	assert.Equal(t, 1500, records[1].Rank)
}

func TestCSVParser_MissingRequiredColumns(t *testing.T) {
	csvContent := `College Name,Branch,Rank
A,CS,1`

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	assert.Empty(t, records)
	require.ErrorIs(t, err, utils.ErrMissingColumns)
	assert.Contains(t, err.Error(), "Category")
	assert.Contains(t, err.Error(), "Percentile")
}

func TestCSVParser_EmptyFile(t *testing.T) {
	records, err := utils.NewCSVParser().ParseCutoffs([]byte("  \n"))

	assert.Empty(t, records)
	assert.ErrorIs(t, err, utils.ErrEmptyCSV)
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile`

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	assert.Empty(t, records)
	assert.ErrorIs(t, err, utils.ErrNoDataRows)
}

func TestCSVParser_MalformedRowRejectsWholeTable(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
A,CS,OPEN,1,90
B,CS,OPEN,abc,89
C,CS,OPEN,3,not-a-number
D,CS,OPEN,4,101`

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	assert.Nil(t, records, "loading is all or nothing")
	require.ErrorIs(t, err, utils.ErrInvalidRowData)
	assert.ErrorIs(t, err, models.ErrInvalidPercentile)
	assert.Contains(t, err.Error(), "line 3: invalid rank")
	assert.Contains(t, err.Error(), "line 4: invalid percentile")
	assert.Contains(t, err.Error(), "line 5")
}

func TestCSVParser_ShortRow(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
A,CS,OPEN`

	_, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	require.ErrorIs(t, err, utils.ErrInvalidRowData)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestCSVParser_FractionalRankRejected(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
A,CS,OPEN,12.5,90`

	_, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	assert.ErrorIs(t, err, utils.ErrInvalidRowData)
}

func TestCSVParser_SkipsBlankRows(t *testing.T) {
	csvContent := "College Name,Branch,Category,Rank,Percentile\nA,CS,OPEN,1,90\n,,,,\nB,CS,OPEN,2,91\n"

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCSVParser_TrimsWhitespace(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
  Spaced College  ,  CS  , OPEN ,  7 ,  90.10  `

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Spaced College", records[0].CollegeName)
	assert.Equal(t, "CS", records[0].Branch)
	assert.Equal(t, 7, records[0].Rank)
}

func TestValidateCSVStructure_Valid(t *testing.T) {
	csvContent := `College Name,Branch,Category,Rank,Percentile
A,CS,OPEN,1,90
B,CS,OPEN,2,89`

	result, err := utils.ValidateCSVStructure([]byte(csvContent))
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.RowCount)
	assert.Empty(t, result.MissingColumns)
	assert.Len(t, result.Columns, 5)
}

func TestValidateCSVStructure_MissingColumns(t *testing.T) {
	result, err := utils.ValidateCSVStructure([]byte("college,branch\nA,CS\n"))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Category", "Rank", "Percentile"}, result.MissingColumns)
}

func TestValidateCSVStructure_Empty(t *testing.T) {
	result, err := utils.ValidateCSVStructure(nil)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"empty file"}, result.Errors)
}

func TestCSVParser_LargeFile(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("College Name,Branch,Category,Rank,Percentile\n")
	for i := 1; i <= 1000; i++ {
		sb.WriteString("College,Branch,OPEN," + strconv.Itoa(i) + ",90.5\n")
	}

	records, err := utils.NewCSVParser().ParseCutoffs([]byte(sb.String()))

	require.NoError(t, err)
	assert.Len(t, records, 1000)
}

func TestCSVParser_NonFinitePercentileRejected(t *testing.T) {
	for _, value := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "NaN%"} {
		t.Run(value, func(t *testing.T) {
			csvContent := "College Name,Branch,Category,Rank,Percentile\nA,CS,OPEN,1,90\nB,CS,OPEN,2," + value + "\n"

			records, err := utils.NewCSVParser().ParseCutoffs([]byte(csvContent))
			require.Error(t, err)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, utils.ErrInvalidRowData)
			assert.Contains(t, err.Error(), "line 3")
		})
	}
}
