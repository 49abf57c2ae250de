package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nps-insights-go/internal/types"
)

const responsesCSV = "Entity,Rating,Answer,Submitted At,User ID\n" +
	"Delivery,5,\"Absolutely wonderful service, thank you!\",2024-03-01 10:00,u1\n" +
	"Delivery,2,The parcel was late and the box was crushed,2024-03-02 10:00,u2\n" +
	"Pricing,4,,2024-03-03 10:00,u1\n" +
	"Pricing,,no rating given,2024-03-02 12:00,u3\n" +
	"Support,1,when was this,someday,u4\n"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestReportCommandJSON(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	in := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(in, []byte(responsesCSV), 0o644))
	outPath := filepath.Join(dir, "report.json")

	run(t, "report", in, "--range", "custom", "--start", "2024-03-01", "--end", "2024-03-02",
		"--output", "json", "--output-file", outPath)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rep types.Report
	require.NoError(t, json.Unmarshal(raw, &rep))
	assert.Equal(t, 3, rep.WindowRecords)
	assert.Equal(t, 0.0, rep.NPS[types.OverallKey].Score)
	assert.Equal(t, 2, rep.NPS[types.OverallKey].Total)
	assert.Equal(t, "vader", rep.Backend.Name)
	assert.Len(t, rep.ClassifiedComments, 3)

	require.Len(t, rep.Issues, 2)
	assert.Equal(t, 5, rep.Issues[0].Row)
	assert.ErrorIs(t, rep.Issues[0], types.ErrInvalidRecord)
	assert.Equal(t, 6, rep.Issues[1].Row)
	assert.ErrorIs(t, rep.Issues[1], types.ErrMalformedTimestamp)
}

func TestReportCommandRejectsDatesWithoutCustomRange(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	in := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(in, []byte(responsesCSV), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"report", in, "--range", "past-week", "--start", "2024-03-01", "--end", "",
		"--output", "json", "--output-file", filepath.Join(dir, "report.json")})
	err := rootCmd.Execute()
	require.ErrorIs(t, err, types.ErrInvalidWindow)
	assert.NoFileExists(t, filepath.Join(dir, "report.json"))
}

func TestSummaryCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	in := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(in, []byte(responsesCSV), 0o644))

	out := run(t, "summary", in)
	assert.Contains(t, out, "Records: 4 of 5 rows (3 with comments)")
	assert.Contains(t, out, "Unique respondents: 3")
	assert.Contains(t, out, "Flagged rows (invalid_record): 1")
	assert.Contains(t, out, "Flagged rows (malformed_timestamp): 1")
	assert.Contains(t, out, "Delivery")
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, run(t, "version"), "nps dev")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
