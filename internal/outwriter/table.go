package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"nps-insights-go/internal/aggregator"
	"nps-insights-go/internal/processor"
	"nps-insights-go/internal/types"
)

const maxAnswerWidth = 80

func writeTable(w io.Writer, rep types.Report, opts Options) error {
	_, _ = fmt.Fprintf(w, "Window: %s (%s to %s)\n", rep.Window.Selector,
		rep.Window.Start.Format(time.DateTime), rep.Window.End.Format(time.DateTime))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Type", "Net Promoter Score (NPS)", "Responses", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, key := range aggregator.Categories(rep.NPS) {
		r := rep.NPS[key]
		data = append(data, []string{
			key,
			FormatNPS(r, opts.RatingMax),
			strconv.Itoa(r.Total),
			ColorLabel(r),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Unique Feedback Submissions: %d\n", rep.UniqueRespondents)
	_, _ = fmt.Fprintf(w, "Records in window: %d of %d\n", rep.WindowRecords, rep.TotalRecords)
	_, _ = fmt.Fprintf(w, "Classified comments: %d, unclassified: %d\n", len(rep.ClassifiedComments), rep.UnclassifiedCount)
	if rep.Backend.Degraded {
		_, _ = fmt.Fprintf(w, "%s classification backend %q degraded: %s\n", poorColor.Sprint("WARNING:"), rep.Backend.Name, rep.Backend.Error)
	}
	if len(rep.Issues) > 0 {
		_, _ = fmt.Fprintf(w, "Flagged rows: %d\n", len(rep.Issues))
	}
	_, _ = fmt.Fprintf(w, "\nInsight: %s\nAction:  %s\nImpact:  %s\n", rep.ActionCard.Insight, rep.ActionCard.Action, rep.ActionCard.Impact)

	if opts.ShowComments {
		return writeCommentGroups(w, rep, opts)
	}
	return nil
}

func writeCommentGroups(w io.Writer, rep types.Report, opts Options) error {
	comments := processor.CommentsFor(rep.ClassifiedComments, opts.Entity)
	for _, g := range processor.GroupByBucket(comments) {
		_, _ = fmt.Fprintf(w, "\n### %s (%d)\n", g.Key, len(g.Comments))
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Entity", "Submitted", "Comment"})
		var data [][]string
		for _, c := range g.Comments {
			data = append(data, []string{c.Entity, c.SubmittedAt.Format(time.DateTime), truncate(c.Answer, maxAnswerWidth)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
