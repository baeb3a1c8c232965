package docker

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// BuildOptions collects everything an image build invocation needs.
// A nil/empty Platforms list selects a native single-arch `docker build`;
// a non-empty list selects `docker buildx build` against a provisioned
// builder, optionally pushing in the same invocation.
type BuildOptions struct {
	// Ref is the fully-qualified tag applied to the built image.
	Ref model.ImageRef

	// Dockerfile is the path to the Dockerfile, relative to Context.
	Dockerfile string

	// Context is the build context directory.
	Context string

	// BuildArgs are forwarded as --build-arg pairs.
	BuildArgs map[string]string

	// Platforms lists the multi-arch targets. Empty means native build.
	Platforms []model.Platform

	// Push, for multi-arch builds, uploads the platform set directly as
	// part of the build invocation (`buildx build --push`). Ignored for
	// single-arch builds, which push separately via Push().
	Push bool
}

// EnsureBuilder makes sure a cross-platform buildx builder with the given
// name exists and is active. If inspect fails the builder is created and
// marked active; otherwise the existing one is reused and marked active.
//
// The operation is idempotent — safe to run repeatedly. Per the pipeline
// contract, a failure here is not diagnosed further: it is reported, and
// any residual breakage surfaces through the subsequent build step.
func EnsureBuilder(ctx context.Context, r Runner, name string) error {
	// `buildx inspect` exits non-zero when the named builder is absent.
	if _, err := r.Output(ctx, "buildx", "inspect", name); err != nil {
		if _, err := r.Output(ctx, "buildx", "create", "--name", name, "--use"); err != nil {
			return model.WrapCLIError(model.KindBuilder,
				fmt.Sprintf("failed to create buildx builder %q", name), err)
		}
		return nil
	}

	// Builder exists — just make it the active one.
	if _, err := r.Output(ctx, "buildx", "use", name); err != nil {
		return model.WrapCLIError(model.KindBuilder,
			fmt.Sprintf("failed to activate buildx builder %q", name), err)
	}
	return nil
}

// Build constructs the image described by opts. On a non-zero toolchain
// exit it returns a KindBuild error with no partial-result inspection and
// no rollback — layer-cache consistency is owned by the toolchain.
func Build(ctx context.Context, r Runner, opts BuildOptions) error {
	args := buildArgs(opts)
	if err := r.Run(ctx, args...); err != nil {
		return model.WrapCLIError(model.KindBuild,
			fmt.Sprintf("image build failed for %s", opts.Ref.String()), err)
	}
	return nil
}

// buildArgs assembles the docker CLI argument list for a build.
// Split out from Build so tests can assert on exact argument shapes.
func buildArgs(opts BuildOptions) []string {
	var args []string

	multiArch := len(opts.Platforms) > 0
	if multiArch {
		args = append(args, "buildx", "build",
			"--platform", model.JoinPlatforms(opts.Platforms))
		if opts.Push {
			args = append(args, "--push")
		}
	} else {
		args = append(args, "build")
	}

	args = append(args, "-t", opts.Ref.String())

	if opts.Dockerfile != "" && opts.Dockerfile != "Dockerfile" {
		args = append(args, "-f", opts.Dockerfile)
	}

	// Sort build-arg keys so the command line is deterministic run to run.
	keys := make([]string, 0, len(opts.BuildArgs))
	for k := range opts.BuildArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--build-arg", k+"="+opts.BuildArgs[k])
	}

	context := opts.Context
	if context == "" {
		context = "."
	}
	return append(args, context)
}

// Push uploads a previously built single-arch image to the registry.
//
// On failure the returned KindPush error carries the three standing
// remediation hints alongside the toolchain's own output, since push
// failures are overwhelmingly one of: stale login, missing repository,
// or missing push permission.
func Push(ctx context.Context, r Runner, ref model.ImageRef) error {
	if err := r.Run(ctx, "push", ref.String()); err != nil {
		msg := fmt.Sprintf("failed to push %s\n", ref.String()) + pushRemediation(ref)
		return model.WrapCLIError(model.KindPush, msg, err)
	}
	return nil
}

// pushRemediation returns the static hints printed with any push failure.
func pushRemediation(ref model.ImageRef) string {
	repo := ref.Namespace + "/" + ref.Name
	return "Check that:\n" +
		"  - you are still logged in (`docker login`)\n" +
		fmt.Sprintf("  - the repository %q exists on the registry\n", repo) +
		"  - your account has push permission for it"
}
