package model

import "fmt"

// ExitCode defines the CLI process exit codes. The release pipeline's
// contract is binary: 0 on full success, 1 on any detected failure
// (missing auth, build failure, push failure, or anything else).
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates the command failed. All failure kinds share
	// this code — callers distinguish outcomes, not causes.
	ExitFailure ExitCode = 1
)

// ErrorKind classifies a failure for messaging purposes. The taxonomy
// follows the pipeline stages: auth precheck, builder provisioning,
// build, smoke test, push, plus daemon/config/general buckets.
type ErrorKind string

const (
	// KindAuth indicates the registry authentication precheck failed.
	// Non-retryable within the tool; the operator must log in out of band.
	KindAuth ErrorKind = "auth"

	// KindBuilder indicates cross-platform builder provisioning failed.
	KindBuilder ErrorKind = "builder"

	// KindBuild indicates the image build invocation failed.
	KindBuild ErrorKind = "build"

	// KindSmoke indicates the post-build smoke test failed.
	KindSmoke ErrorKind = "smoke"

	// KindPush indicates the image upload to the registry failed.
	KindPush ErrorKind = "push"

	// KindDaemon indicates the Docker daemon is not reachable.
	KindDaemon ErrorKind = "daemon"

	// KindConfig indicates invalid or missing configuration.
	KindConfig ErrorKind = "config"

	// KindGeneral covers everything else.
	KindGeneral ErrorKind = "general"
)

// CLIError is the error type carried from domain packages up to the
// command layer. It classifies the failure and wraps the underlying cause.
type CLIError struct {
	// Kind classifies the failure for messaging and diagnostics.
	Kind ErrorKind

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this error. Every failure
// kind exits with status 1.
func (e *CLIError) ExitCode() ExitCode {
	return ExitFailure
}

// NewCLIError creates a CLIError with the given kind and message.
func NewCLIError(kind ErrorKind, message string) *CLIError {
	return &CLIError{Kind: kind, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(kind ErrorKind, message string, err error) *CLIError {
	return &CLIError{Kind: kind, Message: message, Err: err}
}
