package store

import (
	"sort"
	"time"

	"github.com/viant/hitl/model"
)

// Sort orders records per the filter: priority rank then oldest first when
// ByPriority is set, otherwise most recent first with decidedAt taking
// precedence over createdAt for terminal records.
func Sort(records []*model.Request, filter Filter) {
	if filter.ByPriority {
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Priority.Rank() != records[j].Priority.Rank() {
				return records[i].Priority.Rank() < records[j].Priority.Rank()
			}
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		})
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(records[i]).After(sortKey(records[j]))
	})
}

func sortKey(r *model.Request) time.Time {
	if r.DecidedAt != nil {
		return *r.DecidedAt
	}
	return r.CreatedAt
}
