package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/menta2k/agentic-detect/pkg/types"
)

// sessionCookie identifies a browser session. Each session holds only its
// latest Result Bundle, overwritten by the next detection run.
const sessionCookie = "detect_session"

// SessionStore keeps the last result per session. The detection flow itself
// is synchronous per request; the mutex only guards against the HTTP
// server's own concurrency.
type SessionStore struct {
	mu      sync.Mutex
	bundles map[string]*types.ResultBundle
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{bundles: make(map[string]*types.ResultBundle)}
}

// Put stores the bundle for a session, replacing any previous one.
func (st *SessionStore) Put(id string, bundle *types.ResultBundle) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bundles[id] = bundle
}

// Get returns the session's last bundle, or nil when none is stored.
func (st *SessionStore) Get(id string) *types.ResultBundle {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bundles[id]
}

// Clear drops the session's stored bundle.
func (st *SessionStore) Clear(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.bundles, id)
}

// ensureSession returns the request's session ID, creating the cookie when
// the request carries none.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := newSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read on supported platforms does not fail; a zero ID would
		// only merge anonymous sessions, not corrupt results
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(buf)
}
