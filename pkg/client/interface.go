package client

import (
	"context"

	"github.com/menta2k/agentic-detect/pkg/types"
)

// DetectionClient sends an image and one or more object prompts to a
// detection backend and returns the resulting batch. Implementations must
// return *types.RemoteCallError for transport or HTTP failures and
// *types.MalformedResponseError for responses missing the expected data
// field. An empty batch with a nil error means zero detections.
type DetectionClient interface {
	Detect(ctx context.Context, image []byte, prompts []string) (types.DetectionBatch, error)
}
