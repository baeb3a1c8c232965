package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// baseCompose is a realistic compose document with fields the rewrite
// must leave untouched.
const baseCompose = `services:
  agent:
    image: acme/bakaloria-agent:0.9
    ports:
      - "8000:8000"
    env_file:
      - .env
    restart: unless-stopped
  db:
    image: postgres:16
`

// TestRewriteImage verifies that only the target service's image changes
// and every other field survives the round trip.
func TestRewriteImage(t *testing.T) {
	out, err := RewriteImage([]byte(baseCompose), "agent", "acme/bakaloria-agent:latest")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	services := doc["services"].(map[string]interface{})
	agent := services["agent"].(map[string]interface{})
	db := services["db"].(map[string]interface{})

	// The target image was updated.
	assert.Equal(t, "acme/bakaloria-agent:latest", agent["image"])

	// Sibling services and unrelated fields are untouched.
	assert.Equal(t, "postgres:16", db["image"])
	assert.Equal(t, "unless-stopped", agent["restart"])
	assert.Equal(t, []interface{}{"8000:8000"}, agent["ports"])
	assert.Equal(t, []interface{}{".env"}, agent["env_file"])
}

// TestRewriteImage_MissingService verifies that a wrong service name
// fails loudly instead of inventing a new service entry.
func TestRewriteImage_MissingService(t *testing.T) {
	_, err := RewriteImage([]byte(baseCompose), "api", "acme/app:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"api"`)
}

// TestRewriteImage_NoServices covers documents without a services mapping.
func TestRewriteImage_NoServices(t *testing.T) {
	_, err := RewriteImage([]byte("version: '3'\n"), "agent", "acme/app:latest")
	require.Error(t, err)
}

// TestRewriteImage_Empty covers the empty document.
func TestRewriteImage_Empty(t *testing.T) {
	_, err := RewriteImage(nil, "agent", "acme/app:latest")
	require.Error(t, err)
}

// TestUpdateFile verifies the read-rewrite-write round trip on disk.
func TestUpdateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(baseCompose), 0o644))

	ref := model.ImageRef{Namespace: "acme", Name: "bakaloria-agent", Tag: "v2"}
	require.NoError(t, UpdateFile(path, "agent", ref))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "acme/bakaloria-agent:v2")
}

// TestUpdateFile_MissingFile verifies the config-kind error for a
// nonexistent compose file.
func TestUpdateFile_MissingFile(t *testing.T) {
	ref := model.ImageRef{Namespace: "acme", Name: "app", Tag: "latest"}
	err := UpdateFile(filepath.Join(t.TempDir(), "nope.yml"), "agent", ref)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.KindConfig, cliErr.Kind)
}
