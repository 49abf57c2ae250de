package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nps-insights-go/internal/types"
)

func init() {
	Location = time.UTC
}

const sampleCSV = "\ufeffEntity,Rating,Answer,Submitted At,User ID\n" +
	"Delivery,5,Arrived early and well packed,01/03/24 09:15,u1\n" +
	"Delivery,2,Courier was late,2024-03-02 18:00:00,u2\n" +
	"Pricing,4,,2024-03-03T08:00:00Z,u1\n" +
	",5,no entity,2024-03-04 10:00,u3\n" +
	"Pricing,3,bad date,yesterday,u4\n" +
	"Support,n/a,agent never called back,2024-03-05,u5\n" +
	",,,,\n"

func TestParseCSV(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV), CSV)
	require.NoError(t, err)

	assert.Equal(t, 6, ds.Rows, "blank rows are not counted")
	require.Len(t, ds.Records, 4)

	first := ds.Records[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "Delivery", first.Entity)
	assert.Equal(t, 5, first.Rating)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC), first.SubmittedAt, "dates are day-first")

	assert.False(t, ds.Records[2].HasAnswer())
	assert.Equal(t, time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC), ds.Records[2].SubmittedAt.UTC())

	support := ds.Records[3]
	assert.Equal(t, "Support", support.Entity)
	assert.Equal(t, 0, support.Rating, "unparseable rating is kept as missing")

	require.Len(t, ds.Issues, 3)
	assert.Equal(t, 5, ds.Issues[0].Row)
	assert.ErrorIs(t, ds.Issues[0], types.ErrInvalidRecord)
	assert.Equal(t, 6, ds.Issues[1].Row)
	assert.ErrorIs(t, ds.Issues[1], types.ErrMalformedTimestamp)
	assert.Equal(t, 7, ds.Issues[2].Row)
	assert.ErrorIs(t, ds.Issues[2], types.ErrInvalidRecord)
}

func TestParseReservedEntity(t *testing.T) {
	csvText := "Entity,Rating,Answer,Submitted At\n" +
		"overall,2,meh,2024-03-01 10:00\n" +
		"Delivery,5,fast,2024-03-01 11:00\n"
	ds, err := Parse(strings.NewReader(csvText), CSV)
	require.NoError(t, err)

	assert.Len(t, ds.Records, 2, "the row still counts towards the overall result")
	require.Len(t, ds.Issues, 1)
	assert.Equal(t, 2, ds.Issues[0].Row)
	assert.ErrorIs(t, ds.Issues[0], types.ErrInvalidRecord)
	assert.Contains(t, ds.Issues[0].Detail, "reserved")
}

func TestParseMissingColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("Entity,Comment\nDelivery,ok\n"), CSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")
	assert.Contains(t, err.Error(), "submitted at")

	_, err = Parse(strings.NewReader(""), CSV)
	require.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Type", "Score", "Feedback", "Timestamp", "Respondent"},
		{"Delivery", 5, "fast", "2024-03-01 10:00", "u1"},
		{"Pricing", 1, "too expensive", "05/03/2024 14:30", "u2"},
	}
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	ds, err := Parse(&buf, XLSX)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Empty(t, ds.Issues)
	assert.Equal(t, "Pricing", ds.Records[1].Entity)
	assert.Equal(t, 1, ds.Records[1].Rating)
	assert.Equal(t, "too expensive", ds.Records[1].Answer)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), ds.Records[1].SubmittedAt)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 4)

	_, err = LoadFile(filepath.Join(dir, "responses.json"))
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatFromName(t *testing.T) {
	for name, want := range map[string]Format{"a.csv": CSV, "B.XLSX": XLSX, "csv": CSV, "xlsx": XLSX} {
		got, err := FormatFromName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := FormatFromName("notes.txt")
	require.Error(t, err)
}

func TestParseRating(t *testing.T) {
	n, err := parseRating("4.0")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = parseRating("4.5")
	require.Error(t, err)
	_, err = parseRating("")
	require.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"03/04/24 10:30", time.Date(2024, 4, 3, 10, 30, 0, 0, time.UTC)},
		{"3/4/24 10:30", time.Date(2024, 4, 3, 10, 30, 0, 0, time.UTC)},
		{"03/04/2024 10:30:15", time.Date(2024, 4, 3, 10, 30, 15, 0, time.UTC)},
		{"2024-04-03 10:30:00", time.Date(2024, 4, 3, 10, 30, 0, 0, time.UTC)},
		{"2024-04-03", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "yesterday", "2024/13/45"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestSummarize(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleCSV), CSV)
	require.NoError(t, err)

	s := Summarize(ds)
	assert.Equal(t, 6, s.TotalRows)
	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, 3, s.WithAnswer)
	assert.Equal(t, 3, s.UniqueRespondents)
	assert.Equal(t, EntityCount{Entity: "Delivery", Count: 2}, s.ByEntity[0])
	assert.Equal(t, 2, s.IssuesByKind["invalid_record"])
	assert.Equal(t, 1, s.IssuesByKind["malformed_timestamp"])
	assert.Equal(t, time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC), s.First)
}
