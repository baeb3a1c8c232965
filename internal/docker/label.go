package docker

import (
	"time"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// Label key constants define the Docker labels applied to smoke-test
// containers. Labels are the only bookkeeping slipway does — a crashed
// run leaves no state file behind, and leftover containers remain
// discoverable through the Docker API.
//
// All keys share the "slipway." prefix to namespace them away from labels
// set by other tools.
const (
	// LabelPrefix is the common prefix for all slipway labels.
	LabelPrefix = "slipway."

	// LabelManagedBy identifies containers started by slipway.
	// Key: "slipway.managed-by", Value: always "slipway".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelImage stores the image reference the smoke container was
	// started from. Key: "slipway.image".
	LabelImage = LabelPrefix + "image"

	// LabelCreatedAt stores the RFC3339 timestamp of container start.
	// Key: "slipway.created-at".
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "slipway"

// BuildSmokeLabels constructs the label map applied to a smoke container,
// allowing leftover containers to be found and cleaned up later.
func BuildSmokeLabels(ref model.ImageRef, now time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelImage:     ref.String(),
		// UTC keeps the timestamp consistent regardless of host timezone.
		LabelCreatedAt: now.UTC().Format(time.RFC3339),
	}
}
