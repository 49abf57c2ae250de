package types

import "time"

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Report is the full answer to one query over a batch of records.
type Report struct {
	ID                 string               `json:"id"`
	GeneratedAt        time.Time            `json:"generated_at"`
	Window             TimeWindow           `json:"window"`
	TotalRecords       int                  `json:"total_records"`
	WindowRecords      int                  `json:"window_records"`
	UniqueRespondents  int                  `json:"unique_respondents"`
	Empty              bool                 `json:"empty"`
	NPS                map[string]NpsResult `json:"nps"`
	UnclassifiedCount  int                  `json:"unclassified_count"`
	ClassifiedComments []ClassifiedComment  `json:"classified_comments"`
	Backend            BackendStatus        `json:"backend"`
	Issues             []RecordIssue        `json:"issues,omitempty"`
	ActionCard         ActionCard           `json:"action_card"`
	DurationMs         int64                `json:"duration_ms"`
}
