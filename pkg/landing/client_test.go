package landing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/menta2k/agentic-detect/pkg/types"
)

func TestDetectSendsMultipartRequest(t *testing.T) {
	var gotAuth string
	var gotPrompts []string
	var gotModel string
	var gotImage []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotAuth = r.Header.Get("Authorization")
		gotPrompts = r.MultipartForm.Value["prompts"]
		gotModel = r.FormValue("model")

		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image part: %v", err)
		} else {
			gotImage, _ = io.ReadAll(file)
			file.Close()
			if header.Filename != "uploaded_image.jpg" {
				t.Errorf("unexpected upload filename %q", header.Filename)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data": [[{"label": "cat", "score": 0.9, "bounding_box": [10, 10, 50, 50]}]]}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	batch, err := c.Detect(context.Background(), []byte("fake-image"), []string{"cat"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if gotAuth != "Basic secret" {
		t.Errorf("expected Basic auth header, got %q", gotAuth)
	}
	if len(gotPrompts) != 1 || gotPrompts[0] != "cat" {
		t.Errorf("unexpected prompts field: %v", gotPrompts)
	}
	if gotModel != "agentic" {
		t.Errorf("unexpected model field: %q", gotModel)
	}
	if string(gotImage) != "fake-image" {
		t.Errorf("image bytes not forwarded, got %q", gotImage)
	}

	if len(batch) != 1 || batch[0].Label != "cat" || batch[0].Score != 0.9 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestDetectFlatResponseShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data": [{"label": "dog", "score": 0.7, "bounding_box": [1, 2, 3, 4]}, {"label": "dog", "score": 0.4, "bounding_box": [5, 6, 7, 8]}]}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	batch, err := c.Detect(context.Background(), []byte("img"), []string{"dog"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(batch))
	}
}

func TestDetectGroupedResponseConcatenated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data": [[{"label": "cat", "score": 0.9, "bounding_box": [1,1,2,2]}], [{"label": "dog", "score": 0.5, "bounding_box": [3,3,4,4]}]]}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	batch, err := c.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected groups concatenated into 2 detections, got %d", len(batch))
	}
	if batch[0].Label != "cat" || batch[1].Label != "dog" {
		t.Errorf("unexpected concatenation order: %+v", batch)
	}
}

func TestDetectEmptyDataIsZeroDetections(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data": []}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	batch, err := c.Detect(context.Background(), []byte("img"), []string{"cat"})
	if err != nil {
		t.Fatalf("expected zero detections, got error: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch, got %d detections", len(batch))
	}
}

func TestDetectHTTPErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "wrong")
	_, err := c.Detect(context.Background(), []byte("img"), []string{"cat"})

	var remote *types.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if remote.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", remote.Status)
	}
	if remote.Prompt != "cat" {
		t.Errorf("expected error tagged with the prompt, got %q", remote.Prompt)
	}
}

func TestDetectTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // closed server: connection refused

	c := NewClient(ts.URL, "secret")
	_, err := c.Detect(context.Background(), []byte("img"), []string{"cat"})

	var remote *types.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if remote.Status != 0 {
		t.Errorf("transport failure should carry status 0, got %d", remote.Status)
	}
}

func TestDetectMissingDataField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"error": "quota exceeded"}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	_, err := c.Detect(context.Background(), []byte("img"), []string{"cat"})

	var malformed *types.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if len(malformed.Raw) == 0 {
		t.Error("expected the raw payload to be preserved")
	}
}

func TestDetectBatchedErrorHasNoPromptTag(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	_, err := c.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})

	var remote *types.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if remote.Prompt != "" {
		t.Errorf("multi-prompt call should not be tagged with a single prompt, got %q", remote.Prompt)
	}
}

func TestNewClientDefaultEndpoint(t *testing.T) {
	c := NewClient("", "secret")
	if c.endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %q", c.endpoint)
	}
}
