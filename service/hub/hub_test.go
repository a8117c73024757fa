package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
	"github.com/viant/hitl/service/store/memory"
)

func newRequest(id string) *model.Request {
	return &model.Request{
		ID:        id,
		Title:     "pending " + id,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	}
}

func TestService_ConnectSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	assert.NoError(t, storage.Create(ctx, newRequest("r1")))
	assert.NoError(t, storage.Create(ctx, newRequest("r2")))
	_, err := storage.Transition(ctx, store.Transition{ID: "r2", To: model.StatusApproved})
	assert.NoError(t, err)

	svc := New(storage)
	observer, snapshot, err := svc.Connect(ctx)
	assert.NoError(t, err)
	defer observer.Close()

	// only non-terminal requests in the snapshot
	assert.Len(t, snapshot, 1)
	assert.Equal(t, "r1", snapshot[0].ID)
	assert.Equal(t, 1, svc.Observers())
}

func TestService_BroadcastFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	storage := memory.New()
	svc := New(storage)
	assert.NoError(t, svc.Start(ctx))
	assert.Error(t, svc.Start(ctx)) // already started

	first, _, err := svc.Connect(ctx)
	assert.NoError(t, err)
	defer first.Close()
	second, _, err := svc.Connect(ctx)
	assert.NoError(t, err)
	defer second.Close()

	assert.NoError(t, storage.Create(ctx, newRequest("r1")))

	for _, observer := range []*Observer{first, second} {
		select {
		case event := <-observer.Events():
			assert.Equal(t, model.EventRequestCreated, event.Type)
			assert.Equal(t, "r1", event.Request.ID)
		case <-time.After(time.Second):
			t.Fatalf("observer %s missed the event", observer.ID())
		}
	}
}

func TestService_SlowObserverDisconnected(t *testing.T) {
	storage := memory.New()
	svc := New(storage, WithObserverBuffer(1))

	slow, _, err := svc.Connect(context.Background())
	assert.NoError(t, err)
	healthy, _, err := svc.Connect(context.Background())
	assert.NoError(t, err)
	defer healthy.Close()

	event := &model.Event{Type: model.EventRequestCreated, Request: newRequest("r1")}
	svc.Broadcast(event)
	<-healthy.Events() // healthy keeps up, slow never reads
	svc.Broadcast(event) // slow buffer still full

	assert.Equal(t, 1, svc.Observers())

	// the healthy observer keeps receiving
	<-healthy.Events()

	// drain the slow observer and observe its closed channel
	<-slow.Events()
	_, open := <-slow.Events()
	assert.False(t, open)
}

func TestService_Disconnect(t *testing.T) {
	svc := New(memory.New())
	observer, _, err := svc.Connect(context.Background())
	assert.NoError(t, err)

	observer.Close()
	assert.Equal(t, 0, svc.Observers())
	observer.Close() // idempotent

	_, open := <-observer.Events()
	assert.False(t, open)
}
