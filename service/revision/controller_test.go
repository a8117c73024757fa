package revision

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/approval"
	"github.com/viant/hitl/service/store/memory"
)

func newController(decide approval.DecisionFunc, options ...Option) (*Controller, func()) {
	approvals := approval.New(memory.New(), approval.WithPolicy(&policy.Policy{Timeout: time.Minute, MaxRevisions: 2}))
	ctx, cancel := context.WithCancel(context.Background())
	stop := approval.AutoDecider(ctx, approvals, decide, time.Millisecond)
	controller := New(approvals, options...)
	return controller, func() {
		stop()
		cancel()
	}
}

func reportBuilder(ctx context.Context, feedback string) (string, error) {
	if feedback == "" {
		return "draft report", nil
	}
	return "draft report\nrevised per: " + feedback, nil
}

func TestController_ApprovedFirstAttempt(t *testing.T) {
	controller, cleanup := newController(func(*model.Request) (bool, string) {
		return true, ""
	})
	defer cleanup()

	outcome, err := controller.SubmitForApproval(context.Background(), "Q3 report", reportBuilder, 2)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, outcome.Status)
	assert.False(t, outcome.RevisionLimited)
	assert.Equal(t, "draft report", outcome.Content)
	assert.Len(t, outcome.Attempts, 1)
	assert.Empty(t, outcome.Attempts[0].Diff)
}

func TestController_RejectThenApprove(t *testing.T) {
	controller, cleanup := newController(func(request *model.Request) (bool, string) {
		if request.Revision == 0 {
			return false, "add totals"
		}
		return true, ""
	}, WithKind(model.KindFinalReport), WithAgentID("report-writer"))
	defer cleanup()

	outcome, err := controller.SubmitForApproval(context.Background(), "Q3 report", reportBuilder, 2)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, outcome.Status)
	assert.Equal(t, "draft report\nrevised per: add totals", outcome.Content)
	assert.Len(t, outcome.Attempts, 2)

	// the resubmission links back to the rejected attempt
	first, second := outcome.Attempts[0], outcome.Attempts[1]
	assert.Equal(t, model.StatusRejected, first.Status)
	assert.Equal(t, "add totals", first.Reason)
	assert.Equal(t, 1, second.Request.Revision)
	assert.Equal(t, first.Request.ID, second.Request.ParentID)
	assert.Contains(t, second.Diff, "revised per: add totals")
}

func TestController_RevisionLimitExceeded(t *testing.T) {
	var rejections int
	controller, cleanup := newController(func(request *model.Request) (bool, string) {
		rejections++
		return false, fmt.Sprintf("still wrong (%d)", rejections)
	})
	defer cleanup()

	outcome, err := controller.SubmitForApproval(context.Background(), "Q3 report", func(ctx context.Context, feedback string) (string, error) {
		return "attempt for: " + feedback, nil
	}, 2)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRejected, outcome.Status)
	assert.True(t, outcome.RevisionLimited)
	assert.Empty(t, outcome.Content)
	// 2 revisions allowed: original + 2 resubmissions
	assert.Len(t, outcome.Attempts, 3)
}

func TestController_BuilderFailure(t *testing.T) {
	controller, cleanup := newController(func(*model.Request) (bool, string) {
		return true, ""
	})
	defer cleanup()

	_, err := controller.SubmitForApproval(context.Background(), "Q3 report", func(ctx context.Context, feedback string) (string, error) {
		return "", fmt.Errorf("generation failed")
	}, 2)
	assert.Error(t, err)
}

func TestController_ContextCancelAbandonsRequest(t *testing.T) {
	approvals := approval.New(memory.New(), approval.WithPolicy(&policy.Policy{Timeout: time.Minute}))
	controller := New(approvals)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := controller.SubmitForApproval(ctx, "Q3 report", reportBuilder, 2)
	assert.ErrorIs(t, err, context.Canceled)

	// the outstanding request was cancelled so it left the pending set
	deadline := time.After(time.Second)
	for {
		pending, listErr := approvals.ListPending(context.Background())
		assert.NoError(t, listErr)
		if len(pending) == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("abandoned request still pending")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
