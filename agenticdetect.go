// Package agenticdetect ties the detection client, the annotator and the
// result packager into one pipeline for agentic object detection.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		agenticdetect "github.com/menta2k/agentic-detect"
//		"github.com/menta2k/agentic-detect/pkg/landing"
//	)
//
//	func main() {
//		image, err := os.ReadFile("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		client := landing.NewClient("", os.Getenv("VISIONAGENT_API_KEY"))
//		pipeline := agenticdetect.New(client)
//
//		result, err := pipeline.Run(context.Background(), image, "green shoe, gaming chair")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := os.WriteFile("annotated.jpg", result.AnnotatedImage, 0644); err != nil {
//			log.Fatal(err)
//		}
//
//		archive, err := pipeline.Archive(result)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := os.WriteFile("results.zip", archive, 0644); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The pipeline consists of three components:
//
// 1. Detection client (pkg/landing): multipart upload to the remote API
// 2. Annotator (pkg/annotate): bounding boxes and labels on the image
// 3. Packager (pkg/archive): in-memory ZIP of image plus summary table
package agenticdetect

import (
	"context"
	"fmt"

	"github.com/menta2k/agentic-detect/pkg/annotate"
	"github.com/menta2k/agentic-detect/pkg/archive"
	"github.com/menta2k/agentic-detect/pkg/client"
	"github.com/menta2k/agentic-detect/pkg/detection"
	"github.com/menta2k/agentic-detect/pkg/imageio"
	"github.com/menta2k/agentic-detect/pkg/types"
)

// Version of the agentic-detect library
const Version = "1.0.0"

// Options configures a Pipeline.
type Options struct {
	Strategy       detection.Strategy
	JPEGQuality    int
	ArchiveVariant archive.Variant
}

// Pipeline runs detect, annotate and package as one unit.
type Pipeline struct {
	detector  *detection.Detector
	annotator *annotate.Annotator
	variant   archive.Variant
}

// New creates a Pipeline with default configuration: per-prompt strategy,
// default JPEG quality, CSV archive variant.
func New(dc client.DetectionClient) *Pipeline {
	return NewWithOptions(dc, Options{
		Strategy:       detection.StrategyPerPrompt,
		JPEGQuality:    imageio.DefaultQuality,
		ArchiveVariant: archive.VariantCSV,
	})
}

// NewWithOptions creates a Pipeline with custom configuration.
func NewWithOptions(dc client.DetectionClient, opts Options) *Pipeline {
	variant := opts.ArchiveVariant
	if !variant.Valid() {
		variant = archive.VariantCSV
	}
	return &Pipeline{
		detector:  detection.NewDetectorWithStrategy(dc, opts.Strategy),
		annotator: annotate.NewWithQuality(opts.JPEGQuality),
		variant:   variant,
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Detections sorted by descending score.
	Detections types.DetectionBatch
	// Failures holds per-prompt errors from the per-prompt strategy.
	Failures map[string]error
	// AnnotatedImage is the JPEG with boxes and labels drawn. Nil when the
	// run found nothing.
	AnnotatedImage []byte
	// Bundle is what the packager consumes; nil when the run found nothing.
	Bundle *types.ResultBundle
}

// Empty reports whether the run produced zero detections.
func (r *Result) Empty() bool {
	return r == nil || len(r.Detections) == 0
}

// Run parses the comma-separated prompt text, performs detection and
// annotates the image. Zero detections yields an empty (non-nil) Result
// with no annotated image.
func (p *Pipeline) Run(ctx context.Context, image []byte, promptText string) (*Result, error) {
	if len(image) == 0 {
		return nil, types.ErrMissingImage
	}
	prompts, err := detection.ParsePrompts(promptText)
	if err != nil {
		return nil, err
	}

	det, err := p.detector.Detect(ctx, image, prompts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Detections: det.Batch,
		Failures:   det.Failures,
	}
	if det.Empty() {
		return result, nil
	}

	// Legacy gradient coloring for a single prompt; per-prompt base colors
	// otherwise.
	colors := det.Colors
	if len(prompts) == 1 {
		colors = nil
	}
	annotated, err := p.annotator.Annotate(image, det.Batch, colors)
	if err != nil {
		return nil, fmt.Errorf("annotation failed: %w", err)
	}

	result.AnnotatedImage = annotated
	result.Bundle = detection.BuildBundle(annotated, det.Batch)
	return result, nil
}

// Archive packages a run's bundle into the downloadable ZIP.
func (p *Pipeline) Archive(r *Result) ([]byte, error) {
	if r == nil {
		return nil, archive.ErrNothingToPackage
	}
	return archive.Package(r.Bundle, p.variant)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
