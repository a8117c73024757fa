package approval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/hitl/model"
)

func TestAutoApprove(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	request, _ := svc.RequestApproval(ctx, Submission{Title: "deploy plan"})

	stop := AutoApprove(ctx, svc, time.Millisecond)
	defer stop()

	outcome, err := svc.WaitForDecision(ctx, request.ID, time.Second)
	assert.NoError(t, err)
	assert.True(t, outcome.Approved())
	assert.Equal(t, SweptBy, outcome.DecidedBy)
}

func TestAutoReject(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	request, _ := svc.RequestApproval(ctx, Submission{Title: "deploy plan"})

	stop := AutoReject(ctx, svc, "not allowed unattended", time.Millisecond)
	defer stop()

	outcome, err := svc.WaitForDecision(ctx, request.ID, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRejected, outcome.Status)
	assert.Equal(t, "not allowed unattended", outcome.Reason)
}
