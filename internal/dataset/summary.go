package dataset

import (
	"sort"
	"time"

	"nps-insights-go/internal/logger"
	"nps-insights-go/internal/window"
)

type EntityCount struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// Summary is the at-a-glance view of a loaded dataset.
type Summary struct {
	TotalRows         int            `json:"total_rows"`
	TotalRecords      int            `json:"total_records"`
	WithAnswer        int            `json:"with_answer"`
	UniqueRespondents int            `json:"unique_respondents"`
	ByEntity          []EntityCount  `json:"by_entity"`
	First             time.Time      `json:"first"`
	Last              time.Time      `json:"last"`
	IssuesByKind      map[string]int `json:"issues_by_kind"`
}

func Summarize(ds Dataset) Summary {
	log := logger.New().Component("dataset.summary")
	counts := map[string]int{}
	users := map[string]struct{}{}
	s := Summary{
		TotalRows:    ds.Rows,
		TotalRecords: len(ds.Records),
		IssuesByKind: map[string]int{},
	}
	for _, r := range ds.Records {
		counts[r.Entity]++
		if r.UserID != "" {
			users[r.UserID] = struct{}{}
		}
		if r.HasAnswer() {
			s.WithAnswer++
		}
	}
	for _, is := range ds.Issues {
		s.IssuesByKind[is.KindName()]++
	}
	s.UniqueRespondents = len(users)
	s.First, s.Last, _ = window.Span(ds.Records)

	for e, c := range counts {
		s.ByEntity = append(s.ByEntity, EntityCount{Entity: e, Count: c})
	}
	sort.Slice(s.ByEntity, func(i, j int) bool {
		if s.ByEntity[i].Count != s.ByEntity[j].Count {
			return s.ByEntity[i].Count > s.ByEntity[j].Count
		}
		return s.ByEntity[i].Entity < s.ByEntity[j].Entity
	})

	log.WithFields(map[string]interface{}{
		"total_records": s.TotalRecords,
		"entities":      len(s.ByEntity),
		"respondents":   s.UniqueRespondents,
	}).Info("dataset summarization complete")
	return s
}
