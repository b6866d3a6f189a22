package service

import (
	"context"
	"fmt"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/logger"
)

// Step is one write of a multi-store operation. Compensate undoes Action;
// nil means the step cannot be undone.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs steps in order and unwinds completed ones in reverse when a
// later step fails.
type Saga struct {
	Operation string
	VideoID   string
	Steps     []Step
}

// Run executes the saga. On failure it returns the step error wrapped with
// the step name, or a *domain.ConsistencyError when a completed step could
// not be undone.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.Steps {
		err := step.Action(ctx)
		if err == nil {
			logger.CtxDebug(ctx, "%s %s: %s done", s.Operation, s.VideoID, step.Name)
			continue
		}
		cause := fmt.Errorf("%s: %w", step.Name, err)
		if unresolved := s.unwind(ctx, s.Steps[:i], cause); len(unresolved) > 0 {
			return &domain.ConsistencyError{
				Operation:  s.Operation,
				VideoID:    s.VideoID,
				Cause:      cause,
				Unresolved: unresolved,
			}
		}
		return cause
	}
	return nil
}

// unwind compensates completed steps last-first and reports the ones that
// stayed applied. Compensation ignores cancellation of the request.
func (s *Saga) unwind(ctx context.Context, done []Step, cause error) []string {
	ctx = context.WithoutCancel(ctx)

	var unresolved []string
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		log := logger.With(logger.Fields{logger.FieldStep: step.Name})

		if step.Compensate == nil {
			log.Error(ctx, "%s %s: step cannot be undone after failure (%v); manual intervention required",
				s.Operation, s.VideoID, cause)
			unresolved = append(unresolved, step.Name)
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Error(ctx, "%s %s: rollback failed: %v (original error: %v)", s.Operation, s.VideoID, err, cause)
			unresolved = append(unresolved, step.Name)
			continue
		}
		log.Warn(ctx, "%s %s: rolled back after failure: %v", s.Operation, s.VideoID, cause)
	}
	return unresolved
}
