// container.go implements the smoke-container lifecycle: booting the
// freshly built image, tearing it down, and discovering leftovers from
// interrupted runs.
//
// Starting the container goes through `docker run` rather than the SDK's
// ContainerCreate+ContainerStart pair, because the CLI flags map directly
// onto the options we need (detach, publish, labels, env) and keep the
// invocation inspectable in tests via the Runner. Stop, remove, and
// discovery use the SDK, which is better at those.
package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// SmokeRunOptions describes how to boot the image under test.
type SmokeRunOptions struct {
	// Ref is the image to run.
	Ref model.ImageRef

	// HostPort is the host port published to the container's service port.
	HostPort int

	// ContainerPort is the port the service listens on inside the container.
	ContainerPort int

	// Env passes environment variables into the container (e.g., the API
	// credential the service reads at startup).
	Env map[string]string

	// Labels are the slipway management labels (see BuildSmokeLabels).
	Labels map[string]string
}

// RunSmokeContainer starts a detached container from the built image and
// returns its ID. The caller owns teardown via StopContainer/RemoveContainer.
func RunSmokeContainer(ctx context.Context, r Runner, opts SmokeRunOptions) (string, error) {
	args := []string{"run", "-d",
		"-p", fmt.Sprintf("%d:%d", opts.HostPort, opts.ContainerPort),
	}

	// Sorted keys keep the argument list deterministic for tests and logs.
	for _, k := range sortedKeys(opts.Labels) {
		args = append(args, "--label", k+"="+opts.Labels[k])
	}
	for _, k := range sortedKeys(opts.Env) {
		args = append(args, "-e", k+"="+opts.Env[k])
	}
	args = append(args, opts.Ref.String())

	// `docker run -d` prints the new container ID on stdout.
	out, err := r.Output(ctx, args...)
	if err != nil {
		return "", model.WrapCLIError(model.KindSmoke,
			fmt.Sprintf("failed to start smoke container from %s", opts.Ref.String()), err)
	}

	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", model.NewCLIError(model.KindSmoke,
			"docker run returned no container ID")
	}
	return id, nil
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StopContainer stops a running container by ID using the Docker SDK.
// The daemon sends SIGTERM and escalates to SIGKILL after its default
// timeout, so a wedged service cannot hang the pipeline.
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{})
	if err != nil {
		return model.WrapCLIError(model.KindDaemon,
			fmt.Sprintf("failed to stop container %q", containerID), err)
	}
	return nil
}

// RemoveContainer removes a container by ID. When force is true the
// daemon kills it first, which is what cleanup of leftovers wants.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(model.KindDaemon,
			fmt.Sprintf("failed to remove container %q", containerID), err)
	}
	return nil
}

// ListSmokeContainers queries the daemon for all containers carrying the
// "slipway.managed-by=slipway" label, including stopped ones. A normal
// run removes its container on the way out, so anything returned here is
// a leftover from an interrupted run.
func ListSmokeContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	// Server-side label filtering avoids listing unrelated containers.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.KindDaemon,
			"failed to list Docker containers", err)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}
	return result, nil
}

// containerToInfo converts a Docker API container struct to the domain
// ContainerInfo, decoupling callers from the SDK types.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		// The API reports names with a leading "/" that means nothing
		// to users.
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Status:        c.State,
		Labels:        c.Labels,
	}
}
