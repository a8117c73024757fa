package approval

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/viant/hitl/internal/clock"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
)

// SweptBy is recorded as the decider when the sweep approves a request under
// an ApproveOnTimeout policy, and by [AutoDecider] decisions.
const SweptBy = "system"

// StartSweep launches the background timeout sweep and returns stop() –
// call it (or cancel ctx) to exit.
func (s *Service) StartSweep(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if err := s.SweepExpired(ctx); err != nil {
					log.Printf("timeout sweep: %v", err)
				}
			}
		}
	}()
	return func() { close(done) }
}

// SweepExpired transitions every Pending request whose deadline has passed.
// It uses the same compare-and-swap as Decide, so a human decision landing
// at the same instant produces exactly one winner; the loser's Conflict is
// a no-op here.
func (s *Service) SweepExpired(ctx context.Context) error {
	pending, err := s.store.List(ctx, store.Filter{Status: []model.Status{model.StatusPending}})
	if err != nil {
		return err
	}
	now := clock.Now()
	for _, request := range pending {
		if !request.Expired(now) {
			continue
		}
		// A plain timeout is not a decision: only the timestamp is
		// recorded. Decider metadata accompanies explicit outcomes,
		// including a policy-driven approval.
		transition := store.Transition{
			ID:   request.ID,
			From: model.StatusPending,
			To:   model.StatusTimedOut,
		}
		if s.policy != nil && s.policy.ApproveOnTimeout {
			transition.To = model.StatusApproved
			transition.DecidedBy = SweptBy
			transition.Reason = "approved automatically after deadline"
		}
		updated, err := s.store.Transition(ctx, transition)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue // a decision won the race
			}
			return err
		}
		s.afterTransition(ctx, updated)
	}
	return nil
}
