// Package landing implements the DetectionClient for the LandingAI
// agentic-object-detection HTTP API.
package landing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/menta2k/agentic-detect/pkg/types"
)

// DefaultEndpoint is the production agentic object detection endpoint.
const DefaultEndpoint = "https://api.landing.ai/v1/tools/agentic-object-detection"

// DefaultTimeout bounds a single detection call. The upstream service has
// no retry or deadline policy of its own, so the client supplies one.
const DefaultTimeout = 60 * time.Second

// modelName selects the agentic detection model on the remote side.
const modelName = "agentic"

// uploadFilename is the multipart filename the API expects for the image part.
const uploadFilename = "uploaded_image.jpg"

// Client calls the remote detection API. The credential is passed as a
// Basic-style Authorization header value; loading it is the caller's job.
type Client struct {
	endpoint   string
	credential string
	http       *resty.Client
}

// NewClient creates a Client with the default timeout. An empty endpoint
// selects DefaultEndpoint.
func NewClient(endpoint, credential string) *Client {
	return NewClientWithTimeout(endpoint, credential, DefaultTimeout)
}

// NewClientWithTimeout creates a Client with an explicit per-call timeout.
// A non-positive timeout disables the client-side deadline; the context
// still governs cancellation.
func NewClientWithTimeout(endpoint, credential string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := resty.New()
	if timeout > 0 {
		hc.SetTimeout(timeout)
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		credential: credential,
		http:       hc,
	}
}

// Detect posts the image and prompts as a multipart request and decodes the
// detection list. Zero detections is an empty batch with a nil error.
func (c *Client) Detect(ctx context.Context, image []byte, prompts []string) (types.DetectionBatch, error) {
	form := url.Values{"model": {modelName}}
	for _, p := range prompts {
		form.Add("prompts", p)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+c.credential).
		SetFileReader("image", uploadFilename, bytes.NewReader(image)).
		SetFormDataFromValues(form).
		Post(c.endpoint)
	if err != nil {
		return nil, &types.RemoteCallError{Prompt: singlePrompt(prompts), Err: err}
	}
	if resp.IsError() {
		return nil, &types.RemoteCallError{
			Prompt: singlePrompt(prompts),
			Status: resp.StatusCode(),
			Err:    fmt.Errorf("unexpected status %s: %s", resp.Status(), strings.TrimSpace(string(resp.Body()))),
		}
	}

	return decodeResponse(resp.Body())
}

// singlePrompt tags a RemoteCallError with its prompt when the call carried
// exactly one; batched calls fail as a whole and carry no prompt tag.
func singlePrompt(prompts []string) string {
	if len(prompts) == 1 {
		return prompts[0]
	}
	return ""
}

// apiResponse is the envelope both response variants share.
type apiResponse struct {
	Data json.RawMessage `json:"data"`
}

// decodeResponse accepts both documented shapes of the data field:
// a list of per-prompt detection groups, or a flat detection list.
func decodeResponse(body []byte) (types.DetectionBatch, error) {
	var env apiResponse
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		return nil, &types.MalformedResponseError{Raw: body}
	}

	var groups []types.DetectionBatch
	if err := json.Unmarshal(env.Data, &groups); err == nil {
		var batch types.DetectionBatch
		for _, g := range groups {
			batch = append(batch, g...)
		}
		return batch, nil
	}

	var flat types.DetectionBatch
	if err := json.Unmarshal(env.Data, &flat); err == nil {
		return flat, nil
	}

	return nil, &types.MalformedResponseError{Raw: body}
}
