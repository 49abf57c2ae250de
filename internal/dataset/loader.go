package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"nps-insights-go/internal/logger"
	"nps-insights-go/internal/types"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// Dataset is a fully loaded batch. Records only holds rows with a usable
// entity and timestamp; everything else is described in Issues.
type Dataset struct {
	Records []types.Response
	Issues  []types.RecordIssue
	Rows    int
}

// FormatFromName picks the format from a file name or a bare format string.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = strings.ToLower(name)
	}
	switch ext {
	case "csv":
		return CSV, nil
	case "xlsx", "xlsm":
		return XLSX, nil
	}
	return "", fmt.Errorf("unsupported dataset format %q", name)
}

// LoadFile opens path and parses it according to its extension.
func LoadFile(path string) (Dataset, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return Dataset{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Parse(f, format)
}

// Parse reads a whole CSV or XLSX stream.
func Parse(r io.Reader, format Format) (Dataset, error) {
	var rows [][]string
	var err error
	switch format {
	case CSV:
		rows, err = readCSV(r)
	case XLSX:
		rows, err = readXLSX(r)
	default:
		err = fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return Dataset{}, err
	}
	return FromRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

type columns struct {
	entity, rating, answer, submitted, user int
}

// detectColumns maps header cells to fields by name heuristics.
func detectColumns(header []string) (columns, error) {
	c := columns{entity: -1, rating: -1, answer: -1, submitted: -1, user: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case strings.Contains(l, "submitted") || strings.Contains(l, "timestamp") || strings.Contains(l, "date") || l == "time":
			if c.submitted == -1 {
				c.submitted = i
			}
		case strings.Contains(l, "user") || strings.Contains(l, "respondent"):
			if c.user == -1 {
				c.user = i
			}
		case strings.Contains(l, "rating") || strings.Contains(l, "score"):
			if c.rating == -1 {
				c.rating = i
			}
		case strings.Contains(l, "answer") || strings.Contains(l, "comment") || strings.Contains(l, "feedback"):
			if c.answer == -1 {
				c.answer = i
			}
		case strings.Contains(l, "entity") || strings.Contains(l, "category") || l == "type":
			if c.entity == -1 {
				c.entity = i
			}
		}
	}
	var missing []string
	if c.entity == -1 {
		missing = append(missing, "entity")
	}
	if c.rating == -1 {
		missing = append(missing, "rating")
	}
	if c.submitted == -1 {
		missing = append(missing, "submitted at")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// FromRows projects a header row plus data rows into a Dataset. Row numbers
// in issues are 1-based spreadsheet rows, header included.
func FromRows(rows [][]string) (Dataset, error) {
	log := logger.New().Component("dataset.loader")
	if len(rows) == 0 {
		return Dataset{}, errors.New("no header row")
	}
	cols, err := detectColumns(rows[0])
	if err != nil {
		return Dataset{}, err
	}
	log.WithFields(map[string]interface{}{
		"entityIdx":    cols.entity,
		"ratingIdx":    cols.rating,
		"answerIdx":    cols.answer,
		"submittedIdx": cols.submitted,
		"userIdx":      cols.user,
	}).Debug("detected column indices")

	ds := Dataset{Records: make([]types.Response, 0, len(rows)-1)}
	for i, r := range rows[1:] {
		rowNum := i + 2
		if emptyRow(r) {
			continue
		}
		ds.Rows++
		rec := types.Response{
			Row:    rowNum,
			Entity: cell(r, cols.entity),
			Answer: cell(r, cols.answer),
			UserID: cell(r, cols.user),
		}
		if rec.Entity == "" {
			ds.Issues = append(ds.Issues, types.RecordIssue{Row: rowNum, Kind: types.ErrInvalidRecord, Detail: "empty entity"})
			continue
		}
		ts, err := ParseTimestamp(cell(r, cols.submitted))
		if err != nil {
			ds.Issues = append(ds.Issues, types.RecordIssue{Row: rowNum, Kind: types.ErrMalformedTimestamp, Detail: err.Error()})
			continue
		}
		rec.SubmittedAt = ts

		raw := cell(r, cols.rating)
		rating, err := parseRating(raw)
		if err != nil {
			// kept: the comment is still classifiable, NPS math skips it
			ds.Issues = append(ds.Issues, types.RecordIssue{Row: rowNum, Kind: types.ErrInvalidRecord, Detail: err.Error()})
		}
		rec.Rating = rating
		if strings.EqualFold(rec.Entity, types.OverallKey) {
			// kept in the overall figures only; no per-entity result
			ds.Issues = append(ds.Issues, types.RecordIssue{Row: rowNum, Kind: types.ErrInvalidRecord,
				Detail: fmt.Sprintf("entity %q is reserved for the overall result", rec.Entity)})
		}
		ds.Records = append(ds.Records, rec)
	}
	if len(ds.Issues) > 0 {
		log.WithField("issues", len(ds.Issues)).Warn("some rows were flagged while loading")
	}
	return ds, nil
}

func emptyRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseRating accepts integers and integral floats ("4", "4.0").
func parseRating(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing rating")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("rating %q is not an integer", s)
	}
	return int(f), nil
}
