// Package release runs the build-and-push pipeline as an ordered sequence
// of named steps.
//
// The pipeline's state machine is strictly linear:
//
//	START → AUTH_CHECK → {FAIL | (BUILDER_SETUP →) BUILD →
//	        {FAIL | (SMOKE →) (PUSH →) SUCCESS}}
//
// Every step is a blocking call; the first failure terminates the run and
// later steps are never invoked. There is no retry and no rollback — a
// failed build or push leaves diagnosis to the toolchain's own output.
//
// The step implementations live elsewhere (docker, smoke packages); this
// package only owns the ordering and the completed-step record, which is
// what makes the failure-ordering guarantees testable without a daemon.
package release

import (
	"context"
	"time"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// Step is one stage of the pipeline.
type Step interface {
	// Name identifies the step in results and verbose output.
	Name() model.StepName

	// Run executes the step. A non-nil error terminates the pipeline.
	Run(ctx context.Context) error
}

// stepFunc adapts a plain function into a Step.
type stepFunc struct {
	name model.StepName
	fn   func(ctx context.Context) error
}

func (s stepFunc) Name() model.StepName { return s.name }
func (s stepFunc) Run(ctx context.Context) error { return s.fn(ctx) }

// NewStep wraps a function as a named pipeline step.
func NewStep(name model.StepName, fn func(ctx context.Context) error) Step {
	return stepFunc{name: name, fn: fn}
}

// Result records which steps completed and how long the run took.
type Result struct {
	// Completed lists the steps that finished successfully, in order.
	Completed []model.StepName

	// Duration is the total wall time of the run.
	Duration time.Duration
}

// Run executes steps in order, stopping at the first failure.
//
// On failure the returned Result still lists the steps that completed
// before the failing one, so callers can report partial progress. The
// error is returned exactly as the step produced it — steps are expected
// to return model.CLIError values carrying their failure kind.
func Run(ctx context.Context, steps []Step) (*Result, error) {
	start := time.Now()
	result := &Result{}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, model.WrapCLIError(model.KindGeneral, "release cancelled", err)
		}

		if err := step.Run(ctx); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		result.Completed = append(result.Completed, step.Name())
	}

	result.Duration = time.Since(start)
	return result, nil
}
