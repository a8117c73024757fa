package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
)

func TestSort_ByPriority(t *testing.T) {
	base := time.Now()
	records := []*model.Request{
		{ID: "low", Priority: model.PriorityLow, CreatedAt: base},
		{ID: "critical-new", Priority: model.PriorityCritical, CreatedAt: base.Add(time.Minute)},
		{ID: "critical-old", Priority: model.PriorityCritical, CreatedAt: base},
		{ID: "medium", Priority: model.PriorityMedium, CreatedAt: base},
	}
	Sort(records, Filter{ByPriority: true})

	var order []string
	for _, record := range records {
		order = append(order, record.ID)
	}
	assert.Equal(t, []string{"critical-old", "critical-new", "medium", "low"}, order)
}

func TestSort_MostRecentFirst(t *testing.T) {
	base := time.Now()
	decidedAt := base.Add(time.Hour)
	records := []*model.Request{
		{ID: "old", CreatedAt: base},
		{ID: "decided", CreatedAt: base.Add(time.Minute), DecidedAt: &decidedAt},
		{ID: "new", CreatedAt: base.Add(30 * time.Minute)},
	}
	Sort(records, Filter{})

	assert.Equal(t, "decided", records[0].ID)
	assert.Equal(t, "new", records[1].ID)
	assert.Equal(t, "old", records[2].ID)
}

func TestFilter_Matches(t *testing.T) {
	request := &model.Request{
		ID:      "r1",
		Kind:    model.KindPlanApproval,
		AgentID: "agent-1",
		Status:  model.StatusPending,
	}
	testCases := []struct {
		name   string
		filter Filter
		expect bool
	}{
		{name: "empty filter", filter: Filter{}, expect: true},
		{name: "matching status", filter: Filter{Status: []model.Status{model.StatusPending}}, expect: true},
		{name: "status mismatch", filter: Filter{Status: []model.Status{model.StatusApproved}}, expect: false},
		{name: "multi status", filter: Filter{Status: []model.Status{model.StatusApproved, model.StatusPending}}, expect: true},
		{name: "kind mismatch", filter: Filter{Kind: model.KindFinalReport}, expect: false},
		{name: "agent match", filter: Filter{AgentID: "agent-1"}, expect: true},
		{name: "agent mismatch", filter: Filter{AgentID: "agent-2"}, expect: false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, tc.filter.Matches(request), tc.name)
	}
}
