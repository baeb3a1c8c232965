package docker

import (
	"context"
	"fmt"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// InspectImage fetches the local daemon's view of a built image: its ID
// and size. Used after single-arch builds to enrich the success report.
//
// Multi-arch builds are never inspected this way — their artifacts live
// in the builder's cache and the registry, not in the local image store.
func InspectImage(ctx context.Context, cli *Client, ref model.ImageRef) (model.ImageSummary, error) {
	inspect, _, err := cli.Inner().ImageInspectWithRaw(ctx, ref.String())
	if err != nil {
		return model.ImageSummary{}, model.WrapCLIError(model.KindDaemon,
			fmt.Sprintf("failed to inspect image %s", ref.String()), err)
	}

	return model.ImageSummary{
		ID:        inspect.ID,
		SizeBytes: inspect.Size,
	}, nil
}
