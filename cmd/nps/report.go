package main

import (
	"github.com/spf13/cobra"

	"nps-insights-go/internal/aggregator"
	"nps-insights-go/internal/classifier"
	"nps-insights-go/internal/dataset"
	"nps-insights-go/internal/outwriter"
	"nps-insights-go/internal/processor"
	"nps-insights-go/internal/window"
)

var reportOpts struct {
	rangeSel   string
	start, end string
	output     string
	outputFile string
	entity     string
	comments   bool
}

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Compute NPS for a date range and classify comments.",
	Long: `Load a CSV or XLSX export and report NPS overall and per category.

Examples:
  # Everything in the file
  nps report responses.csv

  # Last 7 days, with comments grouped by sentiment
  nps report responses.csv --range past-week --comments

  # A custom range, topic labels, only comments for entities starting with "Deliv"
  nps report responses.xlsx --range custom --start 2024-03-01 --end 2024-03-31 \
      --classifier labels --comments --entity deliv

  # Machine-readable output
  nps report responses.csv --output json --output-file report.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := window.ParseSelector(reportOpts.rangeSel)
		if err != nil {
			return err
		}
		bounds, err := window.ParseBounds(reportOpts.start, reportOpts.end, dataset.Location)
		if err != nil {
			return err
		}
		format, err := outwriter.ParseFormat(reportOpts.output)
		if err != nil {
			return err
		}

		ds, err := dataset.LoadFile(args[0])
		if err != nil {
			return err
		}
		clf, backend, err := classifier.New(rootCtx, cfg.Classifier)
		if err != nil {
			return err
		}
		if backend.Degraded {
			log.WithField("backend", backend.Name).WithField("reason", backend.Error).Warn("classifier running degraded")
		}

		rep, err := processor.NewReporter(aggregator.FromConfig(cfg.NPS), clf, backend).
			RunReport(rootCtx, ds, sel, bounds)
		if err != nil {
			return err
		}
		return outwriter.WriteReportFile(reportOpts.outputFile, rep, outwriter.Options{
			Format:       format,
			RatingMax:    cfg.NPS.RatingMax,
			Entity:       reportOpts.entity,
			ShowComments: reportOpts.comments,
		})
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportOpts.rangeSel, "range", "all-time", "past-week, past-month, all-time or custom")
	f.StringVar(&reportOpts.start, "start", "", "custom range start date (YYYY-MM-DD)")
	f.StringVar(&reportOpts.end, "end", "", "custom range end date (YYYY-MM-DD), inclusive")
	f.StringVarP(&reportOpts.output, "output", "o", "table", "table, json, csv or xlsx")
	f.StringVar(&reportOpts.outputFile, "output-file", "", "write output to this file instead of stdout")
	f.StringVar(&reportOpts.entity, "entity", "", "only show comments whose entity contains this text")
	f.BoolVar(&reportOpts.comments, "comments", false, "list classified comments grouped by bucket")
}
