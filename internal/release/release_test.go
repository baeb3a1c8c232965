package release

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// recordingSteps builds a pipeline of named steps that append their name
// to a shared trace. failAt (when non-empty) makes that step fail with
// the given error kind.
func recordingSteps(trace *[]model.StepName, failAt model.StepName, kind model.ErrorKind) []Step {
	names := []model.StepName{model.StepAuth, model.StepBuilder, model.StepBuild, model.StepPush}
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		name := name
		steps = append(steps, NewStep(name, func(ctx context.Context) error {
			*trace = append(*trace, name)
			if name == failAt {
				return model.NewCLIError(kind, string(name)+" failed")
			}
			return nil
		}))
	}
	return steps
}

// TestRun_AllSucceed verifies the success path: every step runs once, in
// declaration order, and all are recorded as completed.
func TestRun_AllSucceed(t *testing.T) {
	var trace []model.StepName
	steps := recordingSteps(&trace, "", "")

	result, err := Run(context.Background(), steps)
	require.NoError(t, err)

	want := []model.StepName{model.StepAuth, model.StepBuilder, model.StepBuild, model.StepPush}
	assert.Equal(t, want, trace)
	assert.Equal(t, want, result.Completed)
}

// TestRun_AuthFailureSkipsBuild encodes the pipeline's first ordering
// guarantee: when the authentication precheck fails, the build step must
// never be invoked.
func TestRun_AuthFailureSkipsBuild(t *testing.T) {
	var trace []model.StepName
	steps := recordingSteps(&trace, model.StepAuth, model.KindAuth)

	result, err := Run(context.Background(), steps)
	require.Error(t, err)

	// Only the failing auth step ran; nothing after it.
	assert.Equal(t, []model.StepName{model.StepAuth}, trace)
	assert.Empty(t, result.Completed)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.KindAuth, cliErr.Kind)
	assert.Equal(t, model.ExitFailure, cliErr.ExitCode())
}

// TestRun_BuildFailureSkipsPush encodes the second ordering guarantee:
// a build failure must prevent the push step from running.
func TestRun_BuildFailureSkipsPush(t *testing.T) {
	var trace []model.StepName
	steps := recordingSteps(&trace, model.StepBuild, model.KindBuild)

	result, err := Run(context.Background(), steps)
	require.Error(t, err)

	assert.Equal(t, []model.StepName{model.StepAuth, model.StepBuilder, model.StepBuild}, trace)
	assert.NotContains(t, trace, model.StepPush)

	// Auth and builder completed before the failure.
	assert.Equal(t, []model.StepName{model.StepAuth, model.StepBuilder}, result.Completed)
}

// TestRun_PushFailure verifies that a push failure is reported with the
// push kind and that the earlier steps are recorded as completed.
func TestRun_PushFailure(t *testing.T) {
	var trace []model.StepName
	steps := recordingSteps(&trace, model.StepPush, model.KindPush)

	result, err := Run(context.Background(), steps)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.KindPush, cliErr.Kind)
	assert.Equal(t, []model.StepName{model.StepAuth, model.StepBuilder, model.StepBuild}, result.Completed)
}

// TestRun_Cancelled verifies that a cancelled context stops the pipeline
// before invoking the next step.
func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var trace []model.StepName
	steps := recordingSteps(&trace, "", "")

	_, err := Run(ctx, steps)
	require.Error(t, err)
	assert.Empty(t, trace)
}

// TestRun_Empty verifies that an empty pipeline succeeds trivially.
func TestRun_Empty(t *testing.T) {
	result, err := Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Completed)
}
