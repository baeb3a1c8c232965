package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestImageRef_String verifies the reference formatting rules:
// Docker Hub references omit the host prefix, other registries keep it.
func TestImageRef_String(t *testing.T) {
	tests := []struct {
		name string
		ref  ImageRef
		want string
	}{
		{
			name: "docker hub implicit host",
			ref:  ImageRef{Namespace: "acme", Name: "bakaloria-agent", Tag: "latest"},
			want: "acme/bakaloria-agent:latest",
		},
		{
			name: "docker hub explicit host is omitted",
			ref:  ImageRef{Host: "docker.io", Namespace: "acme", Name: "app", Tag: "v1"},
			want: "acme/app:v1",
		},
		{
			name: "third-party registry keeps host",
			ref:  ImageRef{Host: "ghcr.io", Namespace: "acme", Name: "app", Tag: "v1"},
			want: "ghcr.io/acme/app:v1",
		},
		{
			name: "no tag",
			ref:  ImageRef{Namespace: "acme", Name: "app"},
			want: "acme/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
		})
	}
}

// TestParseImageRef covers the round trip from string form back to the
// structured reference, including the host-detection heuristic.
func TestParseImageRef(t *testing.T) {
	t.Run("namespace and name with tag", func(t *testing.T) {
		ref, err := ParseImageRef("acme/bakaloria-agent:latest")
		require.NoError(t, err)
		assert.Equal(t, "acme", ref.Namespace)
		assert.Equal(t, "bakaloria-agent", ref.Name)
		assert.Equal(t, "latest", ref.Tag)
		assert.Empty(t, ref.Host)
	})

	t.Run("tag defaults to latest", func(t *testing.T) {
		ref, err := ParseImageRef("acme/app")
		require.NoError(t, err)
		assert.Equal(t, "latest", ref.Tag)
	})

	t.Run("full host form", func(t *testing.T) {
		ref, err := ParseImageRef("ghcr.io/acme/app:v2")
		require.NoError(t, err)
		assert.Equal(t, "ghcr.io", ref.Host)
		assert.Equal(t, "acme", ref.Namespace)
		assert.Equal(t, "app", ref.Name)
		assert.Equal(t, "v2", ref.Tag)
	})

	t.Run("host without namespace is rejected", func(t *testing.T) {
		// "example.com/app" has a dotted first component, so it must be a
		// registry host — and then the namespace is missing.
		_, err := ParseImageRef("example.com/app")
		require.Error(t, err)
	})

	t.Run("bare name lacks namespace", func(t *testing.T) {
		// A bare name parses structurally but fails validation because the
		// push pipeline requires a registry identity.
		_, err := ParseImageRef("app")
		require.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseImageRef("")
		require.Error(t, err)
	})
}

// TestImageRef_Validate exercises the component grammar checks.
func TestImageRef_Validate(t *testing.T) {
	valid := ImageRef{Namespace: "acme", Name: "bakaloria-agent", Tag: "latest"}
	require.NoError(t, valid.Validate())

	t.Run("uppercase name rejected", func(t *testing.T) {
		ref := valid
		ref.Name = "Bakaloria"
		assert.Error(t, ref.Validate())
	})

	t.Run("empty namespace rejected", func(t *testing.T) {
		ref := valid
		ref.Namespace = ""
		assert.Error(t, ref.Validate())
	})

	t.Run("tag with slash rejected", func(t *testing.T) {
		ref := valid
		ref.Tag = "a/b"
		assert.Error(t, ref.Validate())
	})
}

// TestParsePlatforms verifies the comma-separated platform list parsing
// used by the --platforms flag.
func TestParsePlatforms(t *testing.T) {
	t.Run("two platforms", func(t *testing.T) {
		platforms, err := ParsePlatforms("linux/amd64,linux/arm64")
		require.NoError(t, err)
		require.Len(t, platforms, 2)
		assert.Equal(t, Platform("linux/amd64"), platforms[0])
		assert.Equal(t, Platform("linux/arm64"), platforms[1])
	})

	t.Run("variant form", func(t *testing.T) {
		platforms, err := ParsePlatforms("linux/arm/v7")
		require.NoError(t, err)
		require.Len(t, platforms, 1)
	})

	t.Run("spaces are trimmed", func(t *testing.T) {
		platforms, err := ParsePlatforms("linux/amd64, linux/arm64")
		require.NoError(t, err)
		assert.Len(t, platforms, 2)
	})

	t.Run("empty input selects single-arch path", func(t *testing.T) {
		platforms, err := ParsePlatforms("")
		require.NoError(t, err)
		assert.Nil(t, platforms)
	})

	t.Run("missing arch rejected", func(t *testing.T) {
		_, err := ParsePlatforms("linux")
		require.Error(t, err)
	})

	t.Run("empty component rejected", func(t *testing.T) {
		_, err := ParsePlatforms("linux/")
		require.Error(t, err)
	})
}

// TestJoinPlatforms verifies the buildx --platform argument formatting.
func TestJoinPlatforms(t *testing.T) {
	joined := JoinPlatforms([]Platform{"linux/amd64", "linux/arm64"})
	assert.Equal(t, "linux/amd64,linux/arm64", joined)
}

// TestCLIError verifies error wrapping and the binary exit-code contract.
func TestCLIError(t *testing.T) {
	underlying := errors.New("exit status 1")
	err := WrapCLIError(KindPush, "docker push failed", underlying)

	// Error() includes both the message and the cause.
	assert.Equal(t, "docker push failed: exit status 1", err.Error())

	// Unwrap exposes the cause to errors.Is.
	assert.True(t, errors.Is(err, underlying))

	// All failure kinds exit with status 1.
	assert.Equal(t, ExitFailure, err.ExitCode())
	assert.Equal(t, ExitFailure, NewCLIError(KindAuth, "not logged in").ExitCode())
}
