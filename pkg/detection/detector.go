// Package detection orchestrates detection requests: prompt parsing, the
// per-prompt vs batched request strategy, partial-failure isolation and
// result ordering.
package detection

import (
	"context"
	"fmt"
	"strings"

	"github.com/menta2k/agentic-detect/pkg/client"
	"github.com/menta2k/agentic-detect/pkg/types"
)

// Strategy selects how multiple prompts are submitted to the API.
type Strategy string

const (
	// StrategyPerPrompt issues one sequential call per prompt and
	// concatenates the results. A failed prompt is recorded as a partial
	// failure and does not cancel its siblings.
	StrategyPerPrompt Strategy = "per-prompt"
	// StrategyBatched submits all prompts in a single call. A failure
	// fails the whole batch.
	StrategyBatched Strategy = "batched"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyPerPrompt || s == StrategyBatched
}

// Detector runs detection requests through a DetectionClient.
type Detector struct {
	client   client.DetectionClient
	strategy Strategy
}

// NewDetector creates a Detector with the per-prompt strategy. The remote
// API is only documented to accept one object type per call, so that is
// the safe default.
func NewDetector(c client.DetectionClient) *Detector {
	return NewDetectorWithStrategy(c, StrategyPerPrompt)
}

// NewDetectorWithStrategy creates a Detector with an explicit strategy.
func NewDetectorWithStrategy(c client.DetectionClient, s Strategy) *Detector {
	if !s.Valid() {
		s = StrategyPerPrompt
	}
	return &Detector{client: c, strategy: s}
}

// Result is the outcome of one detection run.
type Result struct {
	// Batch holds all detections, sorted by descending score.
	Batch types.DetectionBatch
	// Colors maps each submitted prompt to its assigned base color.
	Colors types.ColorMap
	// Failures records per-prompt errors from the per-prompt strategy.
	Failures map[string]error
}

// Empty reports whether the run produced zero detections. Not an error;
// callers render it as an informational message.
func (r *Result) Empty() bool {
	return r == nil || len(r.Batch) == 0
}

// ParsePrompts splits comma-separated prompt text, trims whitespace and
// drops empties. All-empty input yields ErrMissingPrompt; more than
// types.MaxPrompts distinct prompts yields ErrTooManyPrompts.
func ParsePrompts(text string) ([]string, error) {
	var prompts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		return nil, types.ErrMissingPrompt
	}
	if len(prompts) > types.MaxPrompts {
		return nil, types.ErrTooManyPrompts
	}
	return prompts, nil
}

// Detect runs the configured strategy for the given image and prompts and
// returns the combined, score-sorted result.
func (d *Detector) Detect(ctx context.Context, image []byte, prompts []string) (*Result, error) {
	if len(image) == 0 {
		return nil, types.ErrMissingImage
	}
	if len(prompts) == 0 {
		return nil, types.ErrMissingPrompt
	}
	if len(prompts) > types.MaxPrompts {
		return nil, types.ErrTooManyPrompts
	}

	res := &Result{
		Colors:   types.AssignColors(prompts),
		Failures: make(map[string]error),
	}

	switch d.strategy {
	case StrategyBatched:
		batch, err := d.client.Detect(ctx, image, prompts)
		if err != nil {
			return nil, err
		}
		res.Batch = batch
	default:
		for _, p := range prompts {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("detection canceled: %w", err)
			}
			batch, err := d.client.Detect(ctx, image, []string{p})
			if err != nil {
				res.Failures[p] = err
				continue
			}
			res.Batch = append(res.Batch, batch...)
		}
	}

	res.Batch.SortByScore()
	return res, nil
}
