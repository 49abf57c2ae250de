package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nps-insights-go/internal/dataset"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:     "summary <file>",
	Short:   "Describe a dataset: records, date span, respondents and flagged rows.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.LoadFile(args[0])
		if err != nil {
			return err
		}
		s := dataset.Summarize(ds)
		out := cmd.OutOrStdout()
		if summaryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}

		fmt.Fprintf(out, "Records: %d of %d rows (%d with comments)\n", s.TotalRecords, s.TotalRows, s.WithAnswer)
		fmt.Fprintf(out, "Span: %s to %s\n", s.First.Format(time.DateTime), s.Last.Format(time.DateTime))
		fmt.Fprintf(out, "Unique respondents: %d\n", s.UniqueRespondents)
		kinds := make([]string, 0, len(s.IssuesByKind))
		for kind := range s.IssuesByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(out, "Flagged rows (%s): %d\n", kind, s.IssuesByKind[kind])
		}
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Entity", "Records"})
		var data [][]string
		for _, e := range s.ByEntity {
			data = append(data, []string{e.Entity, strconv.Itoa(e.Count)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the summary as JSON")
}
