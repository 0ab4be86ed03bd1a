package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/menta2k/agentic-detect/pkg/archive"
	"github.com/menta2k/agentic-detect/pkg/detection"
	"github.com/menta2k/agentic-detect/pkg/types"
)

// User-facing messages for the missing-input conditions. Wording matches
// what the UI has always shown.
const (
	msgNoImage    = "No image uploaded yet."
	msgNoPrompt   = "Please enter at least one prompt."
	msgNoKey      = "API key missing. Please ensure you have saved your API key."
	msgNoResults  = "No objects detected for the given prompts."
	msgNoDownload = "No detection results to download yet."
)

type messageResponse struct {
	Message string `json:"message"`
}

type detectionRow struct {
	Label string    `json:"label"`
	Score float64   `json:"score"`
	Box   []float64 `json:"box"`
}

type detectResponse struct {
	Summary        string            `json:"summary"`
	Detections     []detectionRow    `json:"detections,omitempty"`
	Failures       map[string]string `json:"failures,omitempty"`
	AnnotatedImage string            `json:"annotated_image,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, indexHTML); err != nil {
		s.log.Warn("failed to write index page", zap.Error(err))
	}
}

// handleDetect runs one synchronous detection request: validate inputs,
// call the remote API per the configured strategy, annotate, store the
// bundle for download and return the rendered result.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := ensureSession(w, r)

	// Every missing input short-circuits before any network call.
	if s.credential == "" {
		s.writeMessage(w, http.StatusServiceUnavailable, msgNoKey)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeMessage(w, http.StatusBadRequest, msgNoImage)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeMessage(w, http.StatusBadRequest, msgNoImage)
		return
	}
	imageBytes, err := io.ReadAll(file)
	file.Close()
	if err != nil || len(imageBytes) == 0 {
		s.writeMessage(w, http.StatusBadRequest, msgNoImage)
		return
	}

	prompts, err := detection.ParsePrompts(r.FormValue("prompts"))
	if err != nil {
		if errors.Is(err, types.ErrTooManyPrompts) {
			s.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeMessage(w, http.StatusBadRequest, msgNoPrompt)
		return
	}

	start := time.Now()
	result, err := s.detector.Detect(r.Context(), imageBytes, prompts)
	if err != nil {
		s.writeDetectError(w, err)
		return
	}

	resp := detectResponse{
		Failures: failureMessages(result.Failures),
	}

	if result.Empty() {
		// Zero detections is informational, not an error. Nothing is
		// stored, so a stale bundle from a previous run is cleared.
		s.sessions.Clear(session)
		resp.Summary = msgNoResults
		s.log.Info("detection returned no objects",
			zap.Int("prompts", len(prompts)),
			zap.Int("failures", len(result.Failures)),
			zap.Duration("elapsed", time.Since(start)))
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	// Single-prompt requests keep the legacy score-gradient coloring; with
	// multiple prompts each prompt gets its assigned base color.
	colors := result.Colors
	if len(prompts) == 1 {
		colors = nil
	}
	annotated, err := s.annotator.Annotate(imageBytes, result.Batch, colors)
	if err != nil {
		s.log.Error("annotation failed", zap.Error(err))
		s.writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("Annotation failed: %v", err))
		return
	}

	bundle := detection.BuildBundle(annotated, result.Batch)
	s.sessions.Put(session, bundle)

	resp.Summary = bundle.SummaryText
	resp.AnnotatedImage = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(annotated)
	for _, det := range result.Batch {
		resp.Detections = append(resp.Detections, detectionRow{
			Label: det.Label,
			Score: det.Score,
			Box:   det.BoundingBox,
		})
	}

	s.log.Info("detection completed",
		zap.Int("prompts", len(prompts)),
		zap.Int("detections", len(result.Batch)),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("elapsed", time.Since(start)))

	s.writeJSON(w, http.StatusOK, resp)
}

// handleDownload streams the session's last result as results.zip.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := ensureSession(w, r)

	data, err := archive.Package(s.sessions.Get(session), s.variant)
	if err != nil {
		if errors.Is(err, archive.ErrNothingToPackage) {
			s.writeMessage(w, http.StatusNotFound, msgNoDownload)
			return
		}
		s.log.Error("packaging failed", zap.Error(err))
		s.writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("Packaging failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.DownloadName))
	if _, err := w.Write(data); err != nil {
		s.log.Warn("failed to write archive", zap.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDetectError maps pipeline errors to user-facing messages. Nothing
// here crashes the session.
func (s *Server) writeDetectError(w http.ResponseWriter, err error) {
	var malformed *types.MalformedResponseError
	var remote *types.RemoteCallError

	switch {
	case errors.As(err, &malformed):
		s.log.Warn("malformed API response", zap.Error(err))
		s.writeMessage(w, http.StatusBadGateway, fmt.Sprintf("Unexpected response: %s", malformed.Raw))
	case errors.As(err, &remote):
		s.log.Warn("remote call failed", zap.Error(err))
		s.writeMessage(w, http.StatusBadGateway, fmt.Sprintf("API call failed: %v", err))
	case errors.Is(err, types.ErrMissingImage):
		s.writeMessage(w, http.StatusBadRequest, msgNoImage)
	case errors.Is(err, types.ErrMissingPrompt):
		s.writeMessage(w, http.StatusBadRequest, msgNoPrompt)
	default:
		s.log.Error("detection failed", zap.Error(err))
		s.writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("Detection failed: %v", err))
	}
}

func failureMessages(failures map[string]error) map[string]string {
	if len(failures) == 0 {
		return nil
	}
	out := make(map[string]string, len(failures))
	for prompt, err := range failures {
		out[prompt] = err.Error()
	}
	return out
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, messageResponse{Message: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}
