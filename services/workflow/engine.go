package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Step is one unit of a saga: a forward action and an optional compensation
// that undoes it. Steps share state by closing over a common saga context
// owned by the caller.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Outcome classifies the aggregate result of a saga execution.
type Outcome string

const (
	// OutcomeSucceeded: every forward step completed.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeCompensated: a forward step failed and every compensation ran cleanly.
	OutcomeCompensated Outcome = "compensated"
	// OutcomePartiallyCompensated: a forward step failed and at least one
	// compensation also failed, leaving effects that need manual repair.
	OutcomePartiallyCompensated Outcome = "partially_compensated"
)

// Result reports what the engine did: which step failed, its error, and the
// per-step errors of any compensations that failed during the unwind.
type Result struct {
	Outcome            Outcome
	FailedStep         string
	StepErr            error
	CompensationErrors map[string]error
}

// Err folds the result into a single error for callers, or nil on success.
// The failing step's error is wrapped so typed errors survive errors.As.
func (r Result) Err() error {
	if r.Outcome == OutcomeSucceeded {
		return nil
	}
	err := fmt.Errorf("step %q failed: %w", r.FailedStep, r.StepErr)
	if len(r.CompensationErrors) > 0 {
		names := make([]string, 0, len(r.CompensationErrors))
		for name := range r.CompensationErrors {
			names = append(names, name)
		}
		err = fmt.Errorf("%w (compensation also failed for: %s)", err, strings.Join(names, ", "))
	}
	return err
}

// Engine executes saga steps in declaration order and unwinds on failure.
type Engine struct {
	Logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{Logger: logger}
}

// Execute runs the steps strictly in order. On the first forward failure it
// stops and invokes the compensations of every previously-succeeded step in
// reverse order. Each compensation is attempted independently: one failing
// does not stop the rest. Forward steps are never retried here; retry policy
// belongs to the caller so the saga's effects stay deterministic.
func (e *Engine) Execute(ctx context.Context, steps []Step) Result {
	completed := make([]Step, 0, len(steps))

	for _, step := range steps {
		e.Logger.Debug("executing saga step", zap.String("step", step.Name))
		if err := step.Run(ctx); err != nil {
			e.Logger.Warn("saga step failed, unwinding",
				zap.String("step", step.Name),
				zap.Int("completed", len(completed)),
				zap.Error(err))
			return e.unwind(ctx, completed, step.Name, err)
		}
		completed = append(completed, step)
	}

	return Result{Outcome: OutcomeSucceeded}
}

func (e *Engine) unwind(ctx context.Context, completed []Step, failedStep string, stepErr error) Result {
	res := Result{
		Outcome:    OutcomeCompensated,
		FailedStep: failedStep,
		StepErr:    stepErr,
	}

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		e.Logger.Info("compensating saga step", zap.String("step", step.Name))
		if err := step.Compensate(ctx); err != nil {
			e.Logger.Error("compensation failed",
				zap.String("step", step.Name),
				zap.Error(err))
			if res.CompensationErrors == nil {
				res.CompensationErrors = make(map[string]error)
			}
			res.CompensationErrors[step.Name] = err
			res.Outcome = OutcomePartiallyCompensated
		}
	}

	return res
}
