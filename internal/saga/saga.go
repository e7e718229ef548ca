// Package saga runs a sequence of steps and, when one fails, undoes the
// completed ones in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Step is one unit of a saga. Compensate may be nil for steps with nothing
// to undo. BestEffort steps log their failure instead of failing the saga.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
	BestEffort bool
}

// Saga is an ordered list of steps
type Saga struct {
	name  string
	steps []Step
}

// New creates an empty saga
func New(name string) *Saga {
	return &Saga{name: name}
}

// Add appends a step
func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// StepError reports which step failed and whether compensation was clean
type StepError struct {
	Saga          string
	Step          string
	Err           error
	Compensations []error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("saga %s: step %s failed: %v", e.Saga, e.Step, e.Err)
	if len(e.Compensations) > 0 {
		msg += fmt.Sprintf(" (%d compensation(s) failed)", len(e.Compensations))
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Execute runs every step in order. Compensations run with a context that
// is not cancelled by the caller so a dropped request still cleans up.
func (s *Saga) Execute(ctx context.Context) error {
	completed := make([]Step, 0, len(s.steps))

	for _, step := range s.steps {
		err := step.Run(ctx)
		if err == nil {
			completed = append(completed, step)
			continue
		}

		if step.BestEffort {
			log.Warn().Err(err).Str("saga", s.name).Str("step", step.Name).Msg("Best-effort saga step failed")
			continue
		}

		stepErr := &StepError{Saga: s.name, Step: step.Name, Err: err}
		cleanup := context.WithoutCancel(ctx)
		for i := len(completed) - 1; i >= 0; i-- {
			done := completed[i]
			if done.Compensate == nil {
				continue
			}
			if cerr := done.Compensate(cleanup); cerr != nil {
				log.Error().Err(cerr).Str("saga", s.name).Str("step", done.Name).Msg("Saga compensation failed")
				stepErr.Compensations = append(stepErr.Compensations, cerr)
			}
		}
		return stepErr
	}

	return nil
}

// FailedStep returns the name of the step that failed, if err came from a saga
func FailedStep(err error) (string, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}
	return "", false
}
