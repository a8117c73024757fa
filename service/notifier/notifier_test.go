package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/messaging/memory"
)

type captureChannel struct {
	mu     sync.Mutex
	events []*model.Event
	fail   int
}

func (c *captureChannel) Send(_ context.Context, event *model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		return fmt.Errorf("transient failure")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newEvent(id string, status model.Status) *model.Event {
	return &model.Event{
		Type:      model.EventRequestUpdated,
		Request:   &model.Request{ID: id, Title: "deploy plan", Status: status, DecidedBy: "alice"},
		EmittedAt: time.Now(),
	}
}

func TestService_Dispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := memory.NewQueue[model.Event](memory.DefaultConfig())
	svc := New(queue)
	first := &captureChannel{}
	second := &captureChannel{}
	svc.Register("first", first)
	svc.Register("second", second)
	assert.Len(t, svc.Channels(), 2)

	svc.Start(ctx)
	assert.NoError(t, queue.Publish(ctx, newEvent("r1", model.StatusApproved)))

	deadline := time.After(time.Second)
	for first.count() == 0 || second.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("event not dispatched to all channels")
		case <-time.After(time.Millisecond):
		}
	}

	svc.Unregister("second")
	assert.Len(t, svc.Channels(), 1)
}

func TestService_RetryOnChannelFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := memory.DefaultConfig()
	config.RetryDelay = time.Millisecond
	queue := memory.NewQueue[model.Event](config)

	svc := New(queue)
	flaky := &captureChannel{fail: 1}
	svc.Register("flaky", flaky)

	svc.Start(ctx)
	assert.NoError(t, queue.Publish(ctx, newEvent("r1", model.StatusRejected)))

	deadline := time.After(time.Second)
	for flaky.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("event not redelivered after channel failure")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWebhookChannel_Send(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := NewWebhookChannel(server.URL)
	err := channel.Send(context.Background(), newEvent("r1", model.StatusApproved))
	assert.NoError(t, err)
	assert.Equal(t, string(model.EventRequestUpdated), received["type"])
	assert.Equal(t, "alice", received["decidedBy"])

	request := received["request"].(map[string]interface{})
	assert.Equal(t, "r1", request["id"])
	assert.Equal(t, string(model.StatusApproved), request["status"])
}

func TestWebhookChannel_SendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	channel := NewWebhookChannel(server.URL)
	err := channel.Send(context.Background(), newEvent("r1", model.StatusApproved))
	assert.Error(t, err)
}

func TestLogChannel_Send(t *testing.T) {
	assert.NoError(t, LogChannel{}.Send(context.Background(), newEvent("r1", model.StatusCancelled)))
}
