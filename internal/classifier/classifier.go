// Package classifier maps one free-text comment to one bucket. Two
// strategies are available behind the Classifier interface: a sentiment
// threshold over a polarity scorer, and open-vocabulary label extraction.
package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"

	"nps-insights-go/internal/types"
)

// DefaultPositiveThreshold is the compound score at or above which a comment
// is positive. Everything below it, neutral text included, is negative.
const DefaultPositiveThreshold = 0.7

// Classifier always returns a usable bucket. A non-nil error means the
// bucket is the strategy default because the backend could not answer.
type Classifier interface {
	Classify(ctx context.Context, comment string) (types.Bucket, error)
}

// Scorer returns a compound polarity in [-1, 1].
type Scorer interface {
	Polarity(text string) (float64, error)
}

// Extractor returns zero or more topical labels for a text.
type Extractor interface {
	Labels(ctx context.Context, text string) ([]string, error)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

type SentimentClassifier struct {
	scorer    Scorer
	threshold float64
}

func NewSentimentClassifier(s Scorer, threshold float64) *SentimentClassifier {
	return &SentimentClassifier{scorer: s, threshold: threshold}
}

func (c *SentimentClassifier) Classify(_ context.Context, comment string) (types.Bucket, error) {
	if blank(comment) {
		return types.PolarityOf(types.Negative), nil
	}
	score, err := c.scorer.Polarity(comment)
	if err != nil {
		return types.PolarityOf(types.Negative), fmt.Errorf("%w: %v", types.ErrMissingBackend, err)
	}
	if math.IsNaN(score) {
		return types.PolarityOf(types.Negative), fmt.Errorf("%w: scorer returned NaN", types.ErrMissingBackend)
	}
	return types.PolarityOf(c.bucket(score)), nil
}

func (c *SentimentClassifier) bucket(score float64) string {
	if score >= c.threshold {
		return types.Positive
	}
	return types.Negative
}

type LabelClassifier struct {
	extractor Extractor
}

func NewLabelClassifier(e Extractor) *LabelClassifier {
	return &LabelClassifier{extractor: e}
}

func (c *LabelClassifier) Classify(ctx context.Context, comment string) (types.Bucket, error) {
	if blank(comment) {
		return types.LabelsOf(), nil
	}
	labels, err := c.extractor.Labels(ctx, comment)
	if err != nil {
		return types.LabelsOf(), fmt.Errorf("%w: %v", types.ErrMissingBackend, err)
	}
	return types.LabelsOf(labels...), nil
}

// Unavailable stands in for a strategy whose backend failed to initialize.
type Unavailable struct {
	Default types.Bucket
	Err     error
}

func (u Unavailable) Classify(context.Context, string) (types.Bucket, error) {
	return u.Default, fmt.Errorf("%w: %v", types.ErrMissingBackend, u.Err)
}
