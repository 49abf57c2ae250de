package classifier

import (
	"github.com/jonreiter/govader"
)

// VaderScorer scores text with the VADER lexicon and rule set. The lexicon
// ships with the library, so construction never touches the network.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Polarity(text string) (float64, error) {
	return v.analyzer.PolarityScores(text).Compound, nil
}
