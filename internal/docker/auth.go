package docker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// dockerHubAuthKey is the key under which the Docker CLI stores Docker Hub
// credentials in config.json. It is the legacy index URL, kept for
// compatibility — a plain "docker.io" entry never appears.
const dockerHubAuthKey = "https://index.docker.io/v1/"

// cliConfig models the subset of the Docker CLI's config.json that the
// authentication precheck needs. The file is strict JSON written by
// `docker login`; fields not listed here are ignored.
type cliConfig struct {
	// Auths maps registry auth keys to credential entries. When a
	// credential store is in use the entries are empty objects, but the
	// key's presence still records that a login happened.
	Auths map[string]json.RawMessage `json:"auths"`

	// CredsStore names the default credential helper (e.g., "desktop").
	CredsStore string `json:"credsStore"`

	// CredHelpers maps registry hosts to per-registry credential helpers.
	CredHelpers map[string]string `json:"credHelpers"`
}

// ConfigPath returns the Docker CLI config file location: $DOCKER_CONFIG
// if set, otherwise ~/.docker/config.json.
func ConfigPath() (string, error) {
	if dir := os.Getenv("DOCKER_CONFIG"); dir != "" {
		return filepath.Join(dir, "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".docker", "config.json"), nil
}

// authKey translates a registry host into the key used in config.json's
// auths map. Docker Hub uses the legacy index URL; everything else uses
// the bare host.
func authKey(registryHost string) string {
	if registryHost == "" || registryHost == model.DefaultRegistryHost {
		return dockerHubAuthKey
	}
	return registryHost
}

// CheckAuth verifies that the operator has a stored credential source for
// the target registry before any build is attempted.
//
// A registry counts as authenticated when the CLI config has any of:
//   - an auths entry under the registry's auth key (present even when the
//     actual secret lives in a credential store),
//   - a per-registry credential helper for the host, or
//   - a global credential store (credsStore), which keeps secrets out of
//     config.json entirely and may leave the auths map empty.
//
// On failure it returns a KindAuth CLIError whose message tells the
// operator how to log in. Authentication itself is an out-of-band,
// interactive action — there is no retry here.
func CheckAuth(registryHost string) error {
	path, err := ConfigPath()
	if err != nil {
		return notLoggedIn(registryHost, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// No config file means docker login has never run.
		if os.IsNotExist(err) {
			return notLoggedIn(registryHost, nil)
		}
		return model.WrapCLIError(model.KindAuth,
			fmt.Sprintf("failed to read Docker CLI config %s", path), err)
	}

	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.WrapCLIError(model.KindAuth,
			fmt.Sprintf("failed to parse Docker CLI config %s", path), err)
	}

	key := authKey(registryHost)
	if _, ok := cfg.Auths[key]; ok {
		return nil
	}
	if _, ok := cfg.CredHelpers[authKeyHost(registryHost)]; ok {
		return nil
	}
	if cfg.CredsStore != "" {
		return nil
	}

	return notLoggedIn(registryHost, nil)
}

// authKeyHost returns the host used for credHelpers lookups. Unlike the
// auths map, credHelpers is keyed by plain host name even for Docker Hub.
func authKeyHost(registryHost string) string {
	if registryHost == "" {
		return "index.docker.io"
	}
	return registryHost
}

// notLoggedIn builds the guidance error printed when no credential source
// exists for the target registry.
func notLoggedIn(registryHost string, err error) *model.CLIError {
	loginCmd := "docker login"
	if registryHost != "" && registryHost != model.DefaultRegistryHost {
		loginCmd = "docker login " + registryHost
	}
	return model.WrapCLIError(model.KindAuth,
		fmt.Sprintf("not logged in to the container registry — run `%s` first", loginCmd),
		err)
}
