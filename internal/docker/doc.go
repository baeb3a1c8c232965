// Package docker provides Docker Engine API wrappers and the toolchain
// invocations behind the slipway release pipeline.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Registry authentication prechecks against the Docker CLI config file
//   - Builder provisioning and image build/push via the docker CLI
//     (buildx has no SDK surface, and `docker push` resolves credentials
//     through the CLI's credential helpers)
//   - Smoke-container lifecycle: run, stop, remove, and label-based discovery
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
// Everything the SDK cannot express is run through the Runner abstraction,
// which keeps the command surface testable without a daemon.
package docker
