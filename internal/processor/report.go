package processor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nps-insights-go/internal/actionable"
	"nps-insights-go/internal/aggregator"
	"nps-insights-go/internal/classifier"
	"nps-insights-go/internal/dataset"
	"nps-insights-go/internal/logger"
	"nps-insights-go/internal/metrics"
	"nps-insights-go/internal/types"
	"nps-insights-go/internal/window"
)

// Reporter runs the window -> aggregate -> classify pipeline. It holds no
// per-query state and may be shared.
type Reporter struct {
	thresholds aggregator.Thresholds
	classifier classifier.Classifier
	backend    types.BackendStatus
	metrics    *metrics.Manager
	now        func() time.Time
	log        *logger.Logger
}

type Option func(*Reporter)

// WithClock overrides time.Now, used to resolve relative windows.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(r *Reporter) { r.metrics = m }
}

// NewReporter wires a classifier and the backend status returned when it was
// built. c may be nil, in which case every comment stays unclassified.
func NewReporter(t aggregator.Thresholds, c classifier.Classifier, backend types.BackendStatus, opts ...Option) *Reporter {
	r := &Reporter{
		thresholds: t,
		classifier: c,
		backend:    backend,
		now:        time.Now,
		log:        logger.New().Component("processor"),
	}
	for _, o := range opts {
		o(r)
	}
	if c == nil {
		r.backend = types.BackendStatus{Name: "none", Degraded: true, Error: "no classifier configured"}
	}
	return r
}

// RunReport filters ds to the requested window and builds the report. Only
// an unusable window is returned as an error; record and backend problems
// are carried inside the report.
func (p *Reporter) RunReport(ctx context.Context, ds dataset.Dataset, sel window.Selector, b window.Bounds) (types.Report, error) {
	start := time.Now()
	log := p.log.WithField("selector", sel)

	first, last, _ := window.Span(ds.Records)
	w, err := window.Resolve(sel, p.now(), b, first, last)
	if err != nil {
		log.WithError(err).Warn("window rejected")
		return types.Report{}, err
	}
	subset := window.Filter(ds.Records, w)

	rep := types.Report{
		ID:            uuid.NewString(),
		GeneratedAt:   p.now(),
		Window:        w,
		TotalRecords:  len(ds.Records),
		WindowRecords: len(subset),
		Empty:         len(subset) == 0,
		NPS:           aggregator.Aggregate(subset, p.thresholds),
		Backend:       p.backend,
		Issues:        issuesFor(ds, subset),
	}
	if rep.Empty {
		log.WithError(types.ErrEmptyWindow).Info("window holds no records")
	}
	rep.UniqueRespondents = uniqueRespondents(subset)
	rep.ClassifiedComments, rep.UnclassifiedCount = p.classify(ctx, subset, &rep.Backend)
	rep.ActionCard = actionable.Generate(rep.NPS)
	rep.DurationMs = time.Since(start).Milliseconds()

	p.metrics.ObserveReport(time.Since(start))
	log.WithFields(map[string]interface{}{
		"window_records": rep.WindowRecords,
		"classified":     len(rep.ClassifiedComments),
		"unclassified":   rep.UnclassifiedCount,
		"duration_ms":    rep.DurationMs,
	}).Info("report generated")
	return rep, nil
}

// classify buckets every non-empty answer. Empty answers and answers the
// backend failed on are counted as unclassified instead.
func (p *Reporter) classify(ctx context.Context, records []types.Response, status *types.BackendStatus) ([]types.ClassifiedComment, int) {
	out := make([]types.ClassifiedComment, 0, len(records))
	unclassified := 0
	for _, r := range records {
		if !r.HasAnswer() {
			unclassified++
			continue
		}
		if p.classifier == nil {
			unclassified++
			continue
		}
		bucket, err := p.classifier.Classify(ctx, r.Answer)
		if err != nil {
			unclassified++
			p.metrics.IncClassifierError()
			if errors.Is(err, types.ErrMissingBackend) && !status.Degraded {
				p.log.WithError(err).Warn("classification backend degraded")
			}
			status.Degraded = true
			if status.Error == "" {
				status.Error = err.Error()
			}
			continue
		}
		p.metrics.IncClassified(bucket)
		out = append(out, types.ClassifiedComment{
			Entity:      r.Entity,
			UserID:      r.UserID,
			SubmittedAt: r.SubmittedAt,
			Answer:      r.Answer,
			Bucket:      bucket,
		})
	}
	return out, unclassified
}

// issuesFor keeps issues of rows inside the window plus rows that never became
// a record (those have no usable timestamp to place them).
func issuesFor(ds dataset.Dataset, subset []types.Response) []types.RecordIssue {
	if len(ds.Issues) == 0 {
		return nil
	}
	loaded := make(map[int]struct{}, len(ds.Records))
	for _, r := range ds.Records {
		loaded[r.Row] = struct{}{}
	}
	inWindow := make(map[int]struct{}, len(subset))
	for _, r := range subset {
		inWindow[r.Row] = struct{}{}
	}
	var out []types.RecordIssue
	for _, is := range ds.Issues {
		_, kept := loaded[is.Row]
		_, in := inWindow[is.Row]
		if in || !kept {
			out = append(out, is)
		}
	}
	return out
}

func uniqueRespondents(records []types.Response) int {
	seen := map[string]struct{}{}
	for _, r := range records {
		if r.UserID != "" {
			seen[r.UserID] = struct{}{}
		}
	}
	return len(seen)
}

// ObserveDataset records load counters for a freshly parsed dataset.
func ObserveDataset(m *metrics.Manager, ds dataset.Dataset) {
	m.AddRecordsLoaded(len(ds.Records))
	for _, is := range ds.Issues {
		m.IncRecordIssue(is.KindName())
	}
}
