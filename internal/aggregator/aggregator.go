package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"nps-insights-go/internal/config"
	"nps-insights-go/internal/types"
)

// Thresholds fix the rating scale and the promoter/detractor bands.
type Thresholds struct {
	RatingMin int
	RatingMax int
	Promoter  int
	Detractor int
}

// DefaultThresholds is the 1-5 scale: 5 promotes, 1-3 detract, 4 is passive.
var DefaultThresholds = Thresholds{RatingMin: 1, RatingMax: 5, Promoter: 5, Detractor: 3}

func FromConfig(c config.NPSConfig) Thresholds {
	return Thresholds{
		RatingMin: c.RatingMin,
		RatingMax: c.RatingMax,
		Promoter:  c.PromoterThreshold,
		Detractor: c.DetractorThreshold,
	}
}

func (t Thresholds) Validate() error {
	if t.RatingMin >= t.RatingMax {
		return fmt.Errorf("%w: rating scale %d..%d", types.ErrInvalidConfig, t.RatingMin, t.RatingMax)
	}
	if t.Detractor >= t.Promoter {
		return fmt.Errorf("%w: detractor %d >= promoter %d", types.ErrInvalidConfig, t.Detractor, t.Promoter)
	}
	return nil
}

// InScale reports whether a rating may take part in NPS math.
func (t Thresholds) InScale(rating int) bool {
	return rating >= t.RatingMin && rating <= t.RatingMax
}

type tally struct {
	promoters, passives, detractors int
	sum, total, excluded            int
}

func (c *tally) add(rating int, t Thresholds) {
	if !t.InScale(rating) {
		c.excluded++
		return
	}
	c.total++
	c.sum += rating
	switch {
	case rating >= t.Promoter:
		c.promoters++
	case rating <= t.Detractor:
		c.detractors++
	default:
		c.passives++
	}
}

func (c tally) result() types.NpsResult {
	res := types.NpsResult{
		Promoters:  c.promoters,
		Passives:   c.passives,
		Detractors: c.detractors,
		Total:      c.total,
		Excluded:   c.excluded,
	}
	if c.total == 0 {
		res.NoData = true
		return res
	}
	res.Score = float64(c.promoters-c.detractors) / float64(c.total) * 100
	res.AverageRating = float64(c.sum) / float64(c.total)
	return res
}

// Aggregate computes one NpsResult per distinct entity plus types.OverallKey.
// Categories are discovered from the data. A category with no in-scale
// ratings is reported with NoData set. Records whose entity is literally
// types.OverallKey (any case) count towards the overall result only.
func Aggregate(records []types.Response, t Thresholds) map[string]types.NpsResult {
	overall := tally{}
	byEntity := map[string]*tally{}
	for _, r := range records {
		overall.add(r.Rating, t)
		if strings.EqualFold(r.Entity, types.OverallKey) {
			continue
		}
		c, ok := byEntity[r.Entity]
		if !ok {
			c = &tally{}
			byEntity[r.Entity] = c
		}
		c.add(r.Rating, t)
	}
	out := make(map[string]types.NpsResult, len(byEntity)+1)
	for entity, c := range byEntity {
		out[entity] = c.result()
	}
	out[types.OverallKey] = overall.result()
	return out
}

// Categories lists result keys with Overall first and the rest sorted.
func Categories(results map[string]types.NpsResult) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		if k != types.OverallKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := results[types.OverallKey]; ok {
		keys = append([]string{types.OverallKey}, keys...)
	}
	return keys
}
