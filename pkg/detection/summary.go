package detection

import (
	"fmt"
	"strings"

	"github.com/menta2k/agentic-detect/pkg/types"
)

// SummaryRows converts a batch into tabular summary rows, preserving the
// batch order (descending score after Detect).
func SummaryRows(batch types.DetectionBatch) []types.SummaryRow {
	rows := make([]types.SummaryRow, 0, len(batch))
	for _, det := range batch {
		rows = append(rows, types.SummaryRow{
			Label: det.Label,
			Score: det.Score,
			Box:   det.BoundingBox,
		})
	}
	return rows
}

// SummaryText renders the freeform text block shown in the results pane and
// stored in the text archive variant.
func SummaryText(batch types.DetectionBatch) string {
	if len(batch) == 0 {
		return "No objects detected for the given prompts."
	}
	var sb strings.Builder
	sb.WriteString("Objects Detected:\n")
	for _, det := range batch {
		fmt.Fprintf(&sb, "- Label: %s, Score: %.2f, Box: %s\n",
			det.Label, det.Score, types.FormatBox(det.BoundingBox))
	}
	return sb.String()
}

// BuildBundle assembles the Result Bundle handed to the packager.
func BuildBundle(annotated []byte, batch types.DetectionBatch) *types.ResultBundle {
	return &types.ResultBundle{
		AnnotatedImage: annotated,
		Rows:           SummaryRows(batch),
		SummaryText:    SummaryText(batch),
	}
}
