package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	agenticdetect "github.com/menta2k/agentic-detect"
	"github.com/menta2k/agentic-detect/internal/utils"
	"github.com/menta2k/agentic-detect/pkg/archive"
	"github.com/menta2k/agentic-detect/pkg/detection"
	"github.com/menta2k/agentic-detect/pkg/landing"
)

// credentialEnv is consulted when neither -key nor -keyfile supplies one.
const credentialEnv = "VISIONAGENT_API_KEY"

func main() {
	var in, prompts, outDir, url, key, keyFile string
	var strategy, format string
	var quality, timeout int

	flag.StringVar(&in, "in", "", "input image path (jpg/png/gif/webp)")
	flag.StringVar(&prompts, "prompts", "", "comma-separated object prompts (at most 3)")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.StringVar(&url, "url", "", "detection API endpoint (default: LandingAI agentic object detection)")
	flag.StringVar(&key, "key", "", "API credential (overrides -keyfile and environment)")
	flag.StringVar(&keyFile, "keyfile", "visionagent_api_key.txt", "file containing the API credential")
	flag.StringVar(&strategy, "strategy", "per-prompt", "request strategy: per-prompt|batched")
	flag.StringVar(&format, "format", "csv", "archive summary format: csv|text")
	flag.IntVar(&quality, "quality", 90, "JPEG quality for the annotated image (1-100)")
	flag.IntVar(&timeout, "timeout", 60, "per-call timeout in seconds, 0 disables")

	flag.Parse()
	if in == "" || prompts == "" {
		log.Fatalf("usage: %s -in input.jpg -prompts \"green shoe, gaming chair\" [-out outdir] [-strategy per-prompt|batched] [-format csv|text]", filepath.Base(os.Args[0]))
	}
	if !utils.IsImageFile(in) {
		log.Printf("warning: %s does not look like an image file", in)
	}
	if err := utils.EnsureDir(outDir); err != nil {
		log.Fatal(err)
	}

	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	credential := resolveCredential(key, keyFile)
	if credential == "" {
		log.Fatalf("API key missing: provide -key, -keyfile or %s", credentialEnv)
	}

	image, err := os.ReadFile(in)
	if err != nil {
		log.Fatal(err)
	}

	client := landing.NewClientWithTimeout(url, credential, time.Duration(timeout)*time.Second)
	pipeline := agenticdetect.NewWithOptions(client, agenticdetect.Options{
		Strategy:       detection.Strategy(strategy),
		JPEGQuality:    quality,
		ArchiveVariant: archive.Variant(format),
	})

	result, err := pipeline.Run(context.Background(), image, prompts)
	if err != nil {
		log.Fatal(err)
	}

	for prompt, ferr := range result.Failures {
		log.Printf("prompt %q failed: %v", prompt, ferr)
	}

	if result.Empty() {
		log.Printf("no objects detected for the given prompts")
		return
	}

	for _, det := range result.Detections {
		log.Printf("label=%q score=%.2f box=%v", det.Label, det.Score, det.BoundingBox)
	}

	annotatedPath := filepath.Join(outDir, "annotated.jpg")
	if err := os.WriteFile(annotatedPath, result.AnnotatedImage, 0o644); err != nil {
		log.Fatalf("save %s failed: %v", annotatedPath, err)
	}
	log.Printf("wrote %s", annotatedPath)

	zipBytes, err := pipeline.Archive(result)
	if err != nil {
		log.Fatalf("packaging failed: %v", err)
	}
	zipPath := filepath.Join(outDir, archive.DownloadName)
	if err := os.WriteFile(zipPath, zipBytes, 0o644); err != nil {
		log.Fatalf("save %s failed: %v", zipPath, err)
	}
	log.Printf("wrote %s", zipPath)
}

// resolveCredential prefers the explicit flag, then the key file, then the
// environment variable.
func resolveCredential(key, keyFile string) string {
	if key != "" {
		return key
	}
	if keyFile != "" {
		if data, err := os.ReadFile(keyFile); err == nil {
			if k := strings.TrimSpace(string(data)); k != "" {
				return k
			}
		}
	}
	return strings.TrimSpace(os.Getenv(credentialEnv))
}
