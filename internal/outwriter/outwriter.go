// Package outwriter renders reports as a console table, JSON, CSV or XLSX.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"nps-insights-go/internal/types"
)

type Format string

const (
	TextOut Format = "table"
	JSONOut Format = "json"
	CSVOut  Format = "csv"
	XLSXOut Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "text", TextOut:
		return TextOut, nil
	case JSONOut, CSVOut, XLSXOut:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Options tune rendering. RatingMax is the top of the scale shown next to
// the average rating.
type Options struct {
	Format       Format
	RatingMax    int
	Entity       string
	ShowComments bool
}

// WriteReport dispatches on opts.Format.
func WriteReport(w io.Writer, rep types.Report, opts Options) error {
	if opts.RatingMax == 0 {
		opts.RatingMax = 5
	}
	switch opts.Format {
	case JSONOut:
		return writeJSON(w, rep, opts)
	case CSVOut:
		return writeCSV(w, rep, opts)
	case XLSXOut:
		return writeXLSX(w, rep, opts)
	default:
		return writeTable(w, rep, opts)
	}
}

// WriteReportFile writes to path, or stdout when path is empty.
func WriteReportFile(path string, rep types.Report, opts Options) error {
	if path == "" {
		return WriteReport(os.Stdout, rep, opts)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := WriteReport(f, rep, opts); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", opts.Format, path)
	return nil
}

// FormatNPS renders a result as "NPS (avg / max)", or "no data".
func FormatNPS(r types.NpsResult, ratingMax int) string {
	if r.NoData {
		return "no data"
	}
	return fmt.Sprintf("%.2f (%.3f / %d)", r.Score, r.AverageRating, ratingMax)
}
