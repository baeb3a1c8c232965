// Package compose rewrites the image reference of a service in a Docker
// Compose file after a successful release.
//
// The success report's "next step" used to be a printed reminder to update
// the compose file by hand; with a compose target configured, slipway does
// the edit itself. The rewrite is map-based: the YAML document is parsed
// into generic maps, only services.<name>.image is touched, and every
// other field survives the round trip. Comments do not survive — the same
// trade-off the JSON config rewrite makes, accepted because the file is
// re-serialized rather than patched textually.
package compose

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// RewriteImage sets services.<service>.image to imageRef in the given
// compose YAML document and returns the re-serialized bytes.
//
// Returns an error if the document has no services mapping or the named
// service is absent — a misconfigured service name should fail loudly,
// not silently add a stub service.
func RewriteImage(data []byte, service, imageRef string) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("compose file is empty")
	}

	services, ok := doc["services"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("compose file has no services mapping")
	}

	svc, ok := services[service].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("service %q not found in compose file", service)
	}

	svc["image"] = imageRef
	services[service] = svc
	doc["services"] = services

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize compose file: %w", err)
	}
	return out, nil
}

// UpdateFile rewrites the image reference of a service in the compose
// file at path, writing the result back in place.
func UpdateFile(path, service string, ref model.ImageRef) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.WrapCLIError(model.KindConfig,
			fmt.Sprintf("failed to read compose file %s", path), err)
	}

	updated, err := RewriteImage(data, service, ref.String())
	if err != nil {
		return model.WrapCLIError(model.KindConfig,
			fmt.Sprintf("failed to update compose file %s", path), err)
	}

	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return model.WrapCLIError(model.KindConfig,
			fmt.Sprintf("failed to write compose file %s", path), err)
	}
	return nil
}
