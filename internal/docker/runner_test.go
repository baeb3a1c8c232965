package docker

import (
	"context"
	"strings"
)

// fakeRunner is a scripted Runner used across this package's tests.
// It records every invocation and lets each test decide per-call results,
// so pipeline behavior (auth missing, build failing, push failing) can be
// exercised without a Docker daemon.
type fakeRunner struct {
	// calls records the argument vector of every Run/Output invocation,
	// in order.
	calls [][]string

	// onRun and onOutput, when set, decide each call's outcome.
	// Unset handlers succeed with empty output.
	onRun    func(args []string) error
	onOutput func(args []string) ([]byte, error)
}

func (f *fakeRunner) Run(_ context.Context, args ...string) error {
	f.calls = append(f.calls, args)
	if f.onRun != nil {
		return f.onRun(args)
	}
	return nil
}

func (f *fakeRunner) Output(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.onOutput != nil {
		return f.onOutput(args)
	}
	return nil, nil
}

// callStrings flattens recorded calls into space-joined strings for
// readable assertions.
func (f *fakeRunner) callStrings() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}
