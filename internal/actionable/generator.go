package actionable

import (
	"fmt"

	"nps-insights-go/internal/types"
)

// Generate picks the weakest category with data. A negative NPS there
// produces a concrete action; otherwise the card says no pattern was found.
func Generate(results map[string]types.NpsResult) types.ActionCard {
	worst := ""
	lowest := 0.0
	for entity, r := range results {
		if entity == types.OverallKey || r.NoData {
			continue
		}
		if worst == "" || r.Score < lowest || (r.Score == lowest && entity < worst) {
			lowest = r.Score
			worst = entity
		}
	}
	if worst != "" && lowest < 0 {
		r := results[worst]
		return types.ActionCard{
			Insight: fmt.Sprintf("Detractors outweigh promoters in %s (NPS %.0f, %d of %d responses)", worst, lowest, r.Detractors, r.Total),
			Action:  fmt.Sprintf("Review %s detractor comments and follow up with low-rating respondents", worst),
			Impact:  "Convert detractors and lift overall NPS",
		}
	}
	if overall, ok := results[types.OverallKey]; !ok || overall.NoData {
		return types.ActionCard{
			Insight: "No responses in the selected window",
			Action:  "Widen the date range or collect more responses",
			Impact:  "No assessment possible yet",
		}
	}
	return types.ActionCard{
		Insight: "No strong detractor pattern detected",
		Action:  "Monitor and collect more data",
		Impact:  "Low immediate intervention",
	}
}
