package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultRegistryHost is the registry assumed when no host is configured.
// Docker Hub references are conventionally written without the host prefix
// ("acme/app:latest" rather than "docker.io/acme/app:latest"), and this
// constant drives that formatting rule in ImageRef.String.
const DefaultRegistryHost = "docker.io"

// ImageRef identifies a container image as <host>/<namespace>/<name>:<tag>.
//
// Host is optional and defaults to Docker Hub. Namespace is the registry
// identity (account or organization) under which the image is published.
type ImageRef struct {
	// Host is the registry host (e.g., "ghcr.io"). Empty or "docker.io"
	// means Docker Hub and is omitted from the formatted reference.
	Host string `json:"host,omitempty"`

	// Namespace is the account/namespace prefix (e.g., "acme").
	Namespace string `json:"namespace"`

	// Name is the image repository name (e.g., "bakaloria-agent").
	Name string `json:"name"`

	// Tag is the image tag (e.g., "latest").
	Tag string `json:"tag"`
}

// refPartRegex validates the individual components of an image reference.
// Lowercase alphanumerics plus separators, per the distribution reference
// grammar (simplified: no digest forms, which this tool never produces).
var refPartRegex = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)

// tagRegex validates image tags. Tags allow uppercase, unlike name parts.
var tagRegex = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}$`)

// String formats the reference as pushed to the registry.
// Docker Hub references omit the host prefix so that the printed value
// matches what `docker push` and compose files expect.
func (r ImageRef) String() string {
	ref := r.Name
	if r.Namespace != "" {
		ref = r.Namespace + "/" + ref
	}
	if r.Host != "" && r.Host != DefaultRegistryHost {
		ref = r.Host + "/" + ref
	}
	if r.Tag != "" {
		ref = ref + ":" + r.Tag
	}
	return ref
}

// Validate checks that the reference has all required components and that
// each component satisfies the reference grammar.
func (r ImageRef) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("image reference: name must not be empty")
	}
	if !refPartRegex.MatchString(r.Name) {
		return fmt.Errorf("image reference: invalid name %q", r.Name)
	}
	if r.Namespace == "" {
		return fmt.Errorf("image reference: namespace (registry identity) must not be empty")
	}
	if !refPartRegex.MatchString(r.Namespace) {
		return fmt.Errorf("image reference: invalid namespace %q", r.Namespace)
	}
	if r.Tag == "" {
		return fmt.Errorf("image reference: tag must not be empty")
	}
	if !tagRegex.MatchString(r.Tag) {
		return fmt.Errorf("image reference: invalid tag %q", r.Tag)
	}
	return nil
}

// ParseImageRef parses "name", "namespace/name", or "host/namespace/name",
// each optionally suffixed with ":tag". A leading component containing a
// dot or colon is treated as a registry host, following the same heuristic
// the Docker CLI uses.
func ParseImageRef(s string) (ImageRef, error) {
	if s == "" {
		return ImageRef{}, fmt.Errorf("image reference must not be empty")
	}

	ref := ImageRef{Tag: "latest"}

	// Split off the tag. Only the last colon counts, and only if it appears
	// after the final slash (a colon before a slash is a host port).
	rest := s
	if i := strings.LastIndex(s, ":"); i > strings.LastIndex(s, "/") {
		ref.Tag = s[i+1:]
		rest = s[:i]
	}

	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		ref.Name = parts[0]
	case 2:
		ref.Namespace, ref.Name = parts[0], parts[1]
	case 3:
		ref.Host, ref.Namespace, ref.Name = parts[0], parts[1], parts[2]
	default:
		return ImageRef{}, fmt.Errorf("invalid image reference %q: too many path components", s)
	}

	// "example.com/app" is host/name, not namespace/name.
	if len(parts) == 2 && (strings.ContainsAny(parts[0], ".:") || parts[0] == "localhost") {
		return ImageRef{}, fmt.Errorf("invalid image reference %q: registry host requires a namespace component", s)
	}

	if err := ref.Validate(); err != nil {
		return ImageRef{}, err
	}
	return ref, nil
}

// Platform is a build target in "os/arch" or "os/arch/variant" form,
// e.g. "linux/amd64" or "linux/arm/v7".
type Platform string

// Validate checks the platform string for the expected os/arch[/variant] shape.
func (p Platform) Validate() error {
	parts := strings.Split(string(p), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("invalid platform %q: expected os/arch or os/arch/variant", string(p))
	}
	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("invalid platform %q: empty component", string(p))
		}
	}
	return nil
}

// ParsePlatforms splits a comma-separated platform list ("linux/amd64,linux/arm64")
// into validated Platform values. Empty input yields nil, which selects the
// single-arch pipeline path.
func ParsePlatforms(s string) ([]Platform, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var platforms []Platform
	for _, part := range strings.Split(s, ",") {
		p := Platform(strings.TrimSpace(part))
		if err := p.Validate(); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// JoinPlatforms formats a platform list the way `docker buildx build
// --platform` expects it: comma-separated, no spaces.
func JoinPlatforms(platforms []Platform) string {
	parts := make([]string, len(platforms))
	for i, p := range platforms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

// StepName identifies a stage of the release pipeline. The names mirror the
// pipeline's state machine: auth check, builder setup, build, smoke, push.
type StepName string

const (
	StepAuth    StepName = "auth"
	StepBuilder StepName = "builder"
	StepBuild   StepName = "build"
	StepSmoke   StepName = "smoke"
	StepPush    StepName = "push"
)

// ReleaseResult summarizes a completed release pipeline run.
// It backs the --json output of the release command.
type ReleaseResult struct {
	// Ref is the fully-qualified image reference that was built (and pushed).
	Ref string `json:"ref"`

	// ImageID is the local image ID after a single-arch build. Empty for
	// multi-arch builds, whose artifacts live only in the builder and registry.
	ImageID string `json:"imageId,omitempty"`

	// SizeBytes is the local image size after a single-arch build.
	SizeBytes int64 `json:"sizeBytes,omitempty"`

	// Platforms lists the multi-arch build targets, if any.
	Platforms []Platform `json:"platforms,omitempty"`

	// Pushed reports whether the image was uploaded to the registry.
	Pushed bool `json:"pushed"`

	// Steps lists the pipeline steps that completed, in execution order.
	Steps []StepName `json:"steps"`

	// Duration is the total pipeline wall time.
	Duration time.Duration `json:"durationNs"`
}

// ContainerInfo holds runtime information about a Docker container,
// fetched from the Docker API. Used for smoke-test container tracking.
type ContainerInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// Status is the Docker container state (e.g., "running", "exited").
	Status string `json:"status"`

	// Labels is the full label set on the container, including the
	// slipway.* management labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// ImageSummary holds the post-build inspection result for a local image.
type ImageSummary struct {
	// ID is the image ID (sha256 digest prefix).
	ID string `json:"id"`

	// SizeBytes is the unpacked image size reported by the daemon.
	SizeBytes int64 `json:"sizeBytes"`
}
