package types

import (
	"fmt"
	"image/color"
)

// MaxPrompts is the maximum number of distinct object prompts accepted per
// detection request. The palette below has one base color per slot.
const MaxPrompts = 3

// BoxLen is the number of coordinates a well-formed bounding box carries:
// xmin, ymin, xmax, ymax in pixel units.
const BoxLen = 4

// Detection is one recognized object instance returned by the detection API.
type Detection struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	// BoundingBox holds pixel coordinates (xmin, ymin, xmax, ymax).
	// The upstream API does not guarantee exactly four values, so the
	// length must be checked before use.
	BoundingBox []float64 `json:"bounding_box"`
}

// ValidBox reports whether the detection carries a well-formed bounding box.
// Malformed boxes are skipped during annotation, never fatal.
func (d Detection) ValidBox() bool {
	return len(d.BoundingBox) == BoxLen
}

// DetectionBatch is the ordered sequence of detections produced by one
// request. Display and rendering both use descending-score order.
type DetectionBatch []Detection

// SortByScore orders the batch by descending score. The sort is stable so
// detections with equal scores keep their API order.
func (b DetectionBatch) SortByScore() {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j].Score > b[j-1].Score; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
}

// RGB is a base color assigned to a prompt.
type RGB struct {
	R, G, B uint8
}

// NRGBA converts the base color to an opaque NRGBA value.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Palette holds the fixed base colors handed out to prompts in submission
// order: green, blue, red.
var Palette = [MaxPrompts]RGB{
	{0, 255, 0},
	{0, 0, 255},
	{255, 0, 0},
}

// ColorMap maps a prompt label to its assigned base color. It is created
// fresh for each detection request and never persisted.
type ColorMap map[string]RGB

// AssignColors builds a ColorMap for the given prompts, assigning palette
// colors in submission order. Prompts beyond MaxPrompts are ignored; the
// orchestrator rejects them before this point.
func AssignColors(prompts []string) ColorMap {
	cm := make(ColorMap, len(prompts))
	for i, p := range prompts {
		if i >= MaxPrompts {
			break
		}
		cm[p] = Palette[i]
	}
	return cm
}

// SummaryRow is one line of the tabular detection summary.
type SummaryRow struct {
	Label string
	Score float64
	Box   []float64
}

// ResultBundle pairs the annotated image bytes with the tabular summary.
// It is held only for the duration of one session and overwritten by the
// next detection run.
type ResultBundle struct {
	AnnotatedImage []byte
	Rows           []SummaryRow
	SummaryText    string
}

// Empty reports whether there is nothing to package.
func (rb *ResultBundle) Empty() bool {
	return rb == nil || (len(rb.AnnotatedImage) == 0 && len(rb.Rows) == 0 && rb.SummaryText == "")
}

// FormatBox renders box coordinates the way the summary displays them.
func FormatBox(box []float64) string {
	if len(box) == 0 {
		return "[]"
	}
	s := "["
	for i, v := range box {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%g", v)
	}
	return s + "]"
}
