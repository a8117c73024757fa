package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
	"github.com/viant/hitl/service/store/memory"
)

func created(id string) *model.Event {
	return &model.Event{
		Type:    model.EventRequestCreated,
		Request: &model.Request{ID: id, Status: model.StatusPending},
	}
}

func updated(id string, status model.Status) *model.Event {
	return &model.Event{
		Type:    model.EventRequestUpdated,
		Request: &model.Request{ID: id, Status: status},
	}
}

func TestTracker_Apply(t *testing.T) {
	tracker := New()
	tracker.Apply(created("r1"))
	tracker.Apply(created("r2"))
	tracker.Apply(created("r3"))
	tracker.Apply(updated("r1", model.StatusApproved))
	tracker.Apply(updated("r2", model.StatusRejected))

	snapshot := tracker.Snapshot()
	assert.Equal(t, Counters{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, snapshot)

	tracker.Apply(updated("r3", model.StatusTimedOut))
	assert.Equal(t, Counters{Total: 3, Approved: 1, Rejected: 1, TimedOut: 1}, tracker.Snapshot())

	tracker.Apply(nil) // ignored
}

func TestTracker_ApplyUnseenUpdate(t *testing.T) {
	tracker := New()
	// an update for a request created before the tracker attached must
	// not drive the pending count negative
	tracker.Apply(updated("preloaded", model.StatusApproved))

	snapshot := tracker.Snapshot()
	assert.Equal(t, 0, snapshot.Pending)
	assert.Equal(t, 1, snapshot.Approved)
}

func TestTracker_OnChange(t *testing.T) {
	tracker := New()
	changes := make(chan Counters, 4)
	tracker.OnChange(func(counters Counters) {
		changes <- counters
	})

	tracker.Apply(created("r1"))
	tracker.Apply(updated("r1", model.StatusCancelled))

	first := <-changes
	assert.Equal(t, 1, first.Pending)
	second := <-changes
	assert.Equal(t, 0, second.Pending)
	assert.Equal(t, 1, second.Cancelled)
}

func TestTracker_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := memory.New()
	tracker := New()
	tracker.Start(ctx, storage)

	assert.NoError(t, storage.Create(ctx, &model.Request{ID: "r1", Title: "deploy plan", Status: model.StatusPending, CreatedAt: time.Now()}))
	_, err := storage.Transition(ctx, store.Transition{ID: "r1", To: model.StatusApproved})
	assert.NoError(t, err)

	deadline := time.After(time.Second)
	for {
		snapshot := tracker.Snapshot()
		if snapshot.Total == 1 && snapshot.Approved == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("counters not updated: %+v", tracker.Snapshot())
		case <-time.After(time.Millisecond):
		}
	}
}
