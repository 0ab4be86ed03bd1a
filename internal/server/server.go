// Package server implements the web front-end: the upload page, the detect
// endpoint, the per-session result store and the archive download.
package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/menta2k/agentic-detect/internal/config"
	"github.com/menta2k/agentic-detect/pkg/annotate"
	"github.com/menta2k/agentic-detect/pkg/archive"
	"github.com/menta2k/agentic-detect/pkg/client"
	"github.com/menta2k/agentic-detect/pkg/detection"
)

// maxUploadBytes caps the multipart form size for a detect request.
const maxUploadBytes = 32 << 20

// Server wraps the HTTP mux and the detection pipeline components.
type Server struct {
	mux        *http.ServeMux
	cfg        *config.Config
	detector   *detection.Detector
	annotator  *annotate.Annotator
	credential string
	variant    archive.Variant
	sessions   *SessionStore
	log        *zap.Logger
}

// New creates a Server with all routes registered. The credential may be
// empty; detect requests then fail with the missing-credential message and
// no network call is attempted.
func New(cfg *config.Config, dc client.DetectionClient, credential string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		mux:        http.NewServeMux(),
		cfg:        cfg,
		detector:   detection.NewDetectorWithStrategy(dc, detection.Strategy(cfg.Detector.Strategy)),
		annotator:  annotate.NewWithQuality(cfg.Output.JPEGQuality),
		credential: credential,
		variant:    archive.Variant(cfg.Output.ArchiveVariant),
		sessions:   NewSessionStore(),
		log:        log,
	}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/detect", s.handleDetect)
	s.mux.HandleFunc("/api/download", s.handleDownload)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	return s
}

// Handler returns the root handler for http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.mux
}
