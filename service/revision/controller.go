// Package revision implements the bounded reject/regenerate/resubmit loop
// around the lifecycle manager for checkpoints that allow reworked content
// (typically final-artifact approval).
package revision

import (
	"context"
	"log"
	"time"

	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/approval"
)

// Builder produces artifact content. feedback is empty for the original
// attempt and carries the rejection reason for every revision.
type Builder func(ctx context.Context, feedback string) (string, error)

// Attempt records one submission of the revision chain for audit.
type Attempt struct {
	Request *model.Request
	Status  model.Status
	Reason  string

	// Diff is a unified diff against the previous attempt's content; empty
	// for the original attempt.
	Diff string
}

// Outcome is the terminal result of a revision loop.
type Outcome struct {
	// Status is the final request status; RevisionLimited marks the chain
	// as exhausted after the last rejection.
	Status          model.Status
	RevisionLimited bool

	// Content is the accepted artifact when Status is Approved.
	Content string

	// Attempts retains every submission, oldest first.
	Attempts []*Attempt
}

// Controller drives revision loops through the lifecycle manager's public
// operations; it never touches the store directly.
type Controller struct {
	approvals *approval.Service

	kind     model.Kind
	agentID  string
	priority model.Priority
	timeout  time.Duration
}

// New creates a revision controller.
func New(approvals *approval.Service, options ...Option) *Controller {
	ret := &Controller{
		approvals: approvals,
		kind:      model.KindFinalReport,
		priority:  model.PriorityHigh,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// SubmitForApproval builds the artifact, submits it and awaits the human
// decision, resubmitting revised content after each rejection until approval
// or until maxRevisions resubmissions have been consumed. maxRevisions <= 0
// falls back to the policy limit. A request that times out ends the loop
// without consuming a revision. When ctx is cancelled the outstanding
// request is cancelled so it leaves the pending set.
func (c *Controller) SubmitForApproval(ctx context.Context, title string, build Builder, maxRevisions int) (*Outcome, error) {
	limit := c.approvals.Policy().RevisionLimit(maxRevisions)
	outcome := &Outcome{}

	feedback := ""
	previousContent := ""
	parentID := ""

	for attemptIndex := 0; ; attemptIndex++ {
		content, err := build(ctx, feedback)
		if err != nil {
			return nil, err
		}

		diff := ""
		if attemptIndex > 0 {
			if diff, err = contentDiff(previousContent, content, title); err != nil {
				log.Printf("revision diff for %q attempt %d: %v", title, attemptIndex, err)
				diff = ""
			}
		}

		request, err := c.approvals.RequestApproval(ctx, approval.Submission{
			Kind:     c.kind,
			AgentID:  c.agentID,
			Title:    title,
			Content:  content,
			Priority: c.priority,
			Timeout:  c.timeout,
			ParentID: parentID,
			Revision: attemptIndex,
		})
		if err != nil {
			return nil, err
		}

		decision, err := c.approvals.WaitForDecision(ctx, request.ID, 0)
		if err != nil {
			if ctx.Err() != nil {
				c.abandon(request.ID)
			}
			return nil, err
		}

		attempt := &Attempt{
			Request: decision.Request,
			Status:  decision.Status,
			Reason:  decision.Reason,
			Diff:    diff,
		}
		outcome.Attempts = append(outcome.Attempts, attempt)
		outcome.Status = decision.Status

		switch decision.Status {
		case model.StatusApproved:
			outcome.Content = content
			return outcome, nil
		case model.StatusRejected:
			if attemptIndex >= limit {
				outcome.RevisionLimited = true
				return outcome, nil
			}
			feedback = decision.Reason
			previousContent = content
			parentID = request.ID
		default:
			// TimedOut or Cancelled: not a revision, no resubmission.
			return outcome, nil
		}
	}
}

// abandon cancels an outstanding request after the producer's context died;
// a background context is used because the producer's is already done.
func (c *Controller) abandon(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.approvals.Cancel(ctx, id); err != nil {
		log.Printf("failed to cancel abandoned request %s: %v", id, err)
	}
}
