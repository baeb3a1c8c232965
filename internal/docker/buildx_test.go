package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// testRef is the image reference used throughout this file's tests.
var testRef = model.ImageRef{Namespace: "acme", Name: "bakaloria-agent", Tag: "latest"}

// TestEnsureBuilder_CreatesWhenAbsent verifies that a failing inspect
// leads to create --use.
func TestEnsureBuilder_CreatesWhenAbsent(t *testing.T) {
	r := &fakeRunner{
		onOutput: func(args []string) ([]byte, error) {
			// inspect fails (builder absent), create succeeds.
			if args[1] == "inspect" {
				return nil, errors.New("no builder found")
			}
			return nil, nil
		},
	}

	require.NoError(t, EnsureBuilder(context.Background(), r, "slipway-builder"))

	calls := r.callStrings()
	require.Len(t, calls, 2)
	assert.Equal(t, "buildx inspect slipway-builder", calls[0])
	assert.Equal(t, "buildx create --name slipway-builder --use", calls[1])
}

// TestEnsureBuilder_ReusesWhenPresent verifies the idempotent path:
// when inspect succeeds, the builder is only activated, never recreated.
// Running the provisioning twice must not error on the second run.
func TestEnsureBuilder_ReusesWhenPresent(t *testing.T) {
	r := &fakeRunner{}

	require.NoError(t, EnsureBuilder(context.Background(), r, "slipway-builder"))
	require.NoError(t, EnsureBuilder(context.Background(), r, "slipway-builder"))

	calls := r.callStrings()
	require.Len(t, calls, 4)
	assert.Equal(t, "buildx inspect slipway-builder", calls[0])
	assert.Equal(t, "buildx use slipway-builder", calls[1])
	assert.Equal(t, "buildx inspect slipway-builder", calls[2])
	assert.Equal(t, "buildx use slipway-builder", calls[3])
}

// TestEnsureBuilder_CreateFails verifies the error when neither inspect
// nor create succeeds.
func TestEnsureBuilder_CreateFails(t *testing.T) {
	r := &fakeRunner{
		onOutput: func(args []string) ([]byte, error) {
			return nil, errors.New("buildx unavailable")
		},
	}

	err := EnsureBuilder(context.Background(), r, "slipway-builder")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.KindBuilder, cliErr.Kind)
}

// TestBuildArgs_SingleArch verifies the plain `docker build` argument
// shape, including deterministic build-arg ordering.
func TestBuildArgs_SingleArch(t *testing.T) {
	args := buildArgs(BuildOptions{
		Ref:        testRef,
		Dockerfile: "Dockerfile",
		Context:    ".",
		BuildArgs:  map[string]string{"B": "2", "A": "1"},
	})

	assert.Equal(t, []string{
		"build",
		"-t", "acme/bakaloria-agent:latest",
		"--build-arg", "A=1",
		"--build-arg", "B=2",
		".",
	}, args)
}

// TestBuildArgs_CustomDockerfile verifies that non-default Dockerfile
// paths get the -f flag.
func TestBuildArgs_CustomDockerfile(t *testing.T) {
	args := buildArgs(BuildOptions{
		Ref:        testRef,
		Dockerfile: "deploy/Dockerfile",
		Context:    ".",
	})

	assert.Equal(t, []string{
		"build",
		"-t", "acme/bakaloria-agent:latest",
		"-f", "deploy/Dockerfile",
		".",
	}, args)
}

// TestBuildArgs_MultiArchPush verifies the buildx form: explicit platform
// list and the combined build-and-push flag.
func TestBuildArgs_MultiArchPush(t *testing.T) {
	args := buildArgs(BuildOptions{
		Ref:       testRef,
		Context:   ".",
		Platforms: []model.Platform{"linux/amd64", "linux/arm64"},
		Push:      true,
	})

	assert.Equal(t, []string{
		"buildx", "build",
		"--platform", "linux/amd64,linux/arm64",
		"--push",
		"-t", "acme/bakaloria-agent:latest",
		".",
	}, args)
}

// TestBuild_Failure verifies that a non-zero build exit becomes a
// KindBuild error naming the image.
func TestBuild_Failure(t *testing.T) {
	r := &fakeRunner{
		onRun: func(args []string) error {
			return errors.New("exit status 1")
		},
	}

	err := Build(context.Background(), r, BuildOptions{Ref: testRef, Context: "."})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.KindBuild, cliErr.Kind)
	assert.Contains(t, err.Error(), "acme/bakaloria-agent:latest")
}

// TestPush_Success verifies the push invocation shape.
func TestPush_Success(t *testing.T) {
	r := &fakeRunner{}

	require.NoError(t, Push(context.Background(), r, testRef))

	calls := r.callStrings()
	require.Len(t, calls, 1)
	assert.Equal(t, "push acme/bakaloria-agent:latest", calls[0])
}

// TestPush_FailureCarriesRemediation verifies that a push failure message
// includes all three standing remediation hints.
func TestPush_FailureCarriesRemediation(t *testing.T) {
	r := &fakeRunner{
		onRun: func(args []string) error {
			return errors.New("denied: requested access to the resource is denied")
		},
	}

	err := Push(context.Background(), r, testRef)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.KindPush, cliErr.Kind)

	msg := err.Error()
	assert.Contains(t, msg, "logged in")
	assert.Contains(t, msg, `"acme/bakaloria-agent"`)
	assert.Contains(t, msg, "push permission")
}
