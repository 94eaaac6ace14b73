package sheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/sheet"
)

const sampleCSV = `Tag,Question,Answer,Time
geography,Height of Everest in meters?,8849,10
movies,Year Jurassic Park came out?,1993,
animals,Legs on a spider?,8
`

func TestParseCSV(t *testing.T) {
	rows, err := sheet.ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3, "header row is skipped")

	assert.Equal(t, models.ImportRow{
		Line:     2,
		Topic:    "geography",
		Question: "Height of Everest in meters?",
		Answer:   "8849",
		Time:     "10",
	}, rows[0])

	assert.Equal(t, 3, rows[1].Line)
	assert.Empty(t, rows[1].Time)

	// A ragged row with a missing time column still parses.
	assert.Equal(t, "animals", rows[2].Topic)
	assert.Empty(t, rows[2].Time)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	rows, err := sheet.ParseCSV(strings.NewReader("Tag,Question,Answer,Time\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCSV_Empty(t *testing.T) {
	rows, err := sheet.ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_PicksFormatByExtension(t *testing.T) {
	rows, err := sheet.Parse("questions.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	var buf bytes.Buffer
	require.NoError(t, sheet.WriteXLSX(&buf, []models.Question{
		{Topic: "geography", Question: "Q", Answer: 1, Time: 10},
	}))
	rows, err = sheet.Parse("Questions.XLSX", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	qs := []models.Question{
		{Topic: "geography", Question: "Height of Everest in meters?", Answer: 8849, Time: 10},
		{Topic: "movies", Question: "Running time of Titanic, in minutes?", Answer: 194.5, Time: 7.5},
	}

	var buf bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&buf, qs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Tag,Question,Answer,Time", lines[0])

	rows, err := sheet.ParseCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "geography", rows[0].Topic)
	assert.Equal(t, "8849", rows[0].Answer)
	assert.Equal(t, "Running time of Titanic, in minutes?", rows[1].Question)
	assert.Equal(t, "194.5", rows[1].Answer)
	assert.Equal(t, "7.5", rows[1].Time)
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	qs := []models.Question{
		{Topic: "geography", Question: "Height of Everest in meters?", Answer: 8849, Time: 10},
		{Topic: "movies", Question: "Year Jurassic Park came out?", Answer: 1993, Time: 15},
	}

	var buf bytes.Buffer
	require.NoError(t, sheet.WriteXLSX(&buf, qs))

	rows, err := sheet.ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.ImportRow{
		Line:     2,
		Topic:    "geography",
		Question: "Height of Everest in meters?",
		Answer:   "8849",
		Time:     "10",
	}, rows[0])
	assert.Equal(t, "1993", rows[1].Answer)
	assert.Equal(t, "15", rows[1].Time)
}

func TestWriteCSV_NoQuestions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&buf, nil))
	assert.Equal(t, "Tag,Question,Answer,Time\n", buf.String())
}
