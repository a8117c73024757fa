package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
)

func newRequest(id string) *model.Request {
	return &model.Request{
		ID:        id,
		Kind:      model.KindDataValidation,
		Title:     "validate batch",
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Minute),
	}
}

func TestService_PersistAndReload(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()

	svc, err := New(ctx, base)
	assert.NoError(t, err)
	assert.NoError(t, svc.Create(ctx, newRequest("r1")))
	assert.NoError(t, svc.Create(ctx, newRequest("r2")))
	_, err = svc.Transition(ctx, store.Transition{ID: "r1", To: model.StatusApproved, DecidedBy: "alice"})
	assert.NoError(t, err)

	// a fresh instance over the same base path sees the same state
	reloaded, err := New(ctx, base)
	assert.NoError(t, err)

	first, err := reloaded.Get(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, first.Status)
	assert.Equal(t, "alice", first.DecidedBy)

	second, err := reloaded.Get(ctx, "r2")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, second.Status)

	pending, err := reloaded.List(ctx, store.Filter{Status: []model.Status{model.StatusPending}})
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestService_TransitionConflict(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, t.TempDir())
	assert.NoError(t, err)
	assert.NoError(t, svc.Create(ctx, newRequest("r1")))

	_, err = svc.Transition(ctx, store.Transition{ID: "r1", To: model.StatusCancelled})
	assert.NoError(t, err)

	_, err = svc.Transition(ctx, store.Transition{ID: "r1", To: model.StatusApproved})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestService_DuplicateAcrossRestart(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()

	svc, err := New(ctx, base)
	assert.NoError(t, err)
	assert.NoError(t, svc.Create(ctx, newRequest("r1")))

	reloaded, err := New(ctx, base)
	assert.NoError(t, err)
	assert.ErrorIs(t, reloaded.Create(ctx, newRequest("r1")), store.ErrDuplicateID)
}

func TestService_Watch(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, t.TempDir())
	assert.NoError(t, err)

	sub := svc.Watch(ctx)
	defer sub.Close()

	assert.NoError(t, svc.Create(ctx, newRequest("r1")))
	event := <-sub.Events()
	assert.Equal(t, model.EventRequestCreated, event.Type)
	assert.Equal(t, "r1", event.Request.ID)
}
