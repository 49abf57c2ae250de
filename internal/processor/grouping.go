package processor

import (
	"sort"
	"strings"

	"nps-insights-go/internal/types"
)

// MatchEntity is the display-side entity filter: a case-insensitive
// substring match. An empty pattern matches everything.
func MatchEntity(entity, pattern string) bool {
	if pattern == "" {
		return true
	}
	return strings.Contains(strings.ToLower(entity), strings.ToLower(strings.TrimSpace(pattern)))
}

// CommentsFor returns the comments whose entity matches pattern.
func CommentsFor(comments []types.ClassifiedComment, pattern string) []types.ClassifiedComment {
	out := make([]types.ClassifiedComment, 0, len(comments))
	for _, c := range comments {
		if MatchEntity(c.Entity, pattern) {
			out = append(out, c)
		}
	}
	return out
}

// Group is the set of comments sharing one bucket key.
type Group struct {
	Key      string                    `json:"key"`
	Comments []types.ClassifiedComment `json:"comments"`
}

// GroupByBucket groups comments by bucket key, largest group first. A
// comment with several labels appears under each of them.
func GroupByBucket(comments []types.ClassifiedComment) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, c := range comments {
		for _, k := range c.Bucket.Keys() {
			i, ok := idx[k]
			if !ok {
				i = len(groups)
				idx[k] = i
				groups = append(groups, Group{Key: k})
			}
			groups[i].Comments = append(groups[i].Comments, c)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Comments) != len(groups[j].Comments) {
			return len(groups[i].Comments) > len(groups[j].Comments)
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}
