package types

import (
	"errors"
	"fmt"
)

// Missing-input conditions. Each is surfaced as a user-visible message and
// short-circuits the request before any network call is attempted.
var (
	ErrMissingImage      = errors.New("no image uploaded yet")
	ErrMissingPrompt     = errors.New("please enter at least one prompt")
	ErrMissingCredential = errors.New("API key missing")
)

// ErrTooManyPrompts rejects requests exceeding MaxPrompts distinct prompts.
var ErrTooManyPrompts = fmt.Errorf("at most %d prompts are supported per request", MaxPrompts)

// RemoteCallError reports a transport failure or non-success HTTP status
// from the detection API. In per-prompt mode it is recorded as a partial
// failure for its prompt and does not cancel sibling prompts.
type RemoteCallError struct {
	Prompt string // prompt the call carried; empty for a batched call
	Status int    // HTTP status, 0 on transport failure
	Err    error
}

func (e *RemoteCallError) Error() string {
	if e.Prompt != "" {
		return fmt.Sprintf("detection call for prompt %q failed: %v", e.Prompt, e.Err)
	}
	return fmt.Sprintf("detection call failed: %v", e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// MalformedResponseError reports a 2xx response whose JSON lacks the
// expected "data" field. The raw payload is kept for debuggability.
type MalformedResponseError struct {
	Raw []byte
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: %s", e.Raw)
}
