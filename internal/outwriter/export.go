package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"nps-insights-go/internal/aggregator"
	"nps-insights-go/internal/processor"
	"nps-insights-go/internal/types"
)

var npsHeaders = []string{"type", "nps", "avg_rating", "promoters", "passives", "detractors", "total", "label", "no_data"}

func npsRow(key string, r types.NpsResult) []string {
	return []string{
		key,
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		strconv.FormatFloat(r.AverageRating, 'f', 3, 64),
		strconv.Itoa(r.Promoters),
		strconv.Itoa(r.Passives),
		strconv.Itoa(r.Detractors),
		strconv.Itoa(r.Total),
		PlainLabel(r),
		strconv.FormatBool(r.NoData),
	}
}

func writeJSON(w io.Writer, rep types.Report, opts Options) error {
	if opts.Entity != "" {
		rep.ClassifiedComments = processor.CommentsFor(rep.ClassifiedComments, opts.Entity)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, rep types.Report, _ Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(npsHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, key := range aggregator.Categories(rep.NPS) {
		if err := cw.Write(npsRow(key, rep.NPS[key])); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeXLSX produces a workbook with an NPS sheet and a Comments sheet.
func writeXLSX(w io.Writer, rep types.Report, opts Options) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const npsSheet, commentSheet = "NPS", "Comments"
	if err := f.SetSheetName("Sheet1", npsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, npsSheet, 1, npsHeaders); err != nil {
		return err
	}
	for i, key := range aggregator.Categories(rep.NPS) {
		if err := setRow(f, npsSheet, i+2, npsRow(key, rep.NPS[key])); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(commentSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := setRow(f, commentSheet, 1, []string{"entity", "user_id", "submitted_at", "answer", "bucket"}); err != nil {
		return err
	}
	for i, c := range processor.CommentsFor(rep.ClassifiedComments, opts.Entity) {
		row := []string{c.Entity, c.UserID, c.SubmittedAt.Format(time.DateTime), c.Answer, c.Bucket.String()}
		if err := setRow(f, commentSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cellRef, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cellRef, &vals); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
