package types

import (
	"sort"
	"strings"
	"time"
)

// OverallKey is the synthetic category computed over every record in a query.
const OverallKey = "Overall"

// Uncategorized is the label assigned when extraction yields nothing.
const Uncategorized = "Uncategorized"

// Response is one survey row. Rating 0 means the rating cell was missing.
type Response struct {
	Row         int       `json:"row,omitempty"`
	Entity      string    `json:"entity"`
	Rating      int       `json:"rating"`
	Answer      string    `json:"answer,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UserID      string    `json:"user_id,omitempty"`
}

// HasAnswer reports whether the record carries a classifiable comment.
func (r Response) HasAnswer() bool {
	return strings.TrimSpace(r.Answer) != ""
}

// NpsResult is the aggregate for one category.
type NpsResult struct {
	Score         float64 `json:"score"`
	AverageRating float64 `json:"average_rating"`
	Promoters     int     `json:"promoters"`
	Passives      int     `json:"passives"`
	Detractors    int     `json:"detractors"`
	Total         int     `json:"total"`
	Excluded      int     `json:"excluded,omitempty"`
	NoData        bool    `json:"no_data"`
}

type TimeWindow struct {
	Selector string    `json:"selector"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Contains reports whether t lies inside the inclusive window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type BucketKind string

const (
	PolarityBucket BucketKind = "polarity"
	LabelBucket    BucketKind = "labels"
)

const (
	Positive = "positive"
	Negative = "negative"
)

// Bucket is the classification outcome for one comment: a polarity tag or
// a non-empty label set.
type Bucket struct {
	Kind     BucketKind `json:"kind"`
	Polarity string     `json:"polarity,omitempty"`
	Labels   []string   `json:"labels,omitempty"`
}

func PolarityOf(p string) Bucket {
	return Bucket{Kind: PolarityBucket, Polarity: p}
}

// LabelsOf normalizes labels (trim, dedupe, sort) and falls back to Uncategorized.
func LabelsOf(labels ...string) Bucket {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		out = append(out, Uncategorized)
	}
	sort.Strings(out)
	return Bucket{Kind: LabelBucket, Labels: out}
}

// Keys returns the grouping keys of the bucket. A label bucket belongs to
// every one of its labels.
func (b Bucket) Keys() []string {
	if b.Kind == LabelBucket {
		return b.Labels
	}
	return []string{b.Polarity}
}

func (b Bucket) String() string {
	return strings.Join(b.Keys(), ", ")
}

type ClassifiedComment struct {
	Entity      string    `json:"entity"`
	UserID      string    `json:"user_id,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answer      string    `json:"answer"`
	Bucket      Bucket    `json:"bucket"`
}

// BackendStatus describes the sentiment/label backend used for a report.
type BackendStatus struct {
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}
