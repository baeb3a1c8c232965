// Package model defines the domain types for the slipway CLI.
//
// The types here are the vocabulary shared by every other package:
// image references, target platforms, release results, and the CLIError
// type that carries the failure taxonomy up to the command layer.
//
// Key design decision: every failure kind maps to process exit status 1.
// The release pipeline's callers (CI scripts, operators) only distinguish
// success from failure; the ErrorKind exists for messaging, not for
// exit-code arithmetic.
package model
