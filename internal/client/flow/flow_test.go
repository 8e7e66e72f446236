package flow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gamehive/gamehive/internal/client/session"
	"github.com/gamehive/gamehive/pkg/authapi"
	"github.com/gamehive/gamehive/pkg/cryptox"

	"github.com/stretchr/testify/require"
)

// testEnv is a fake auth service plus a real (temp-file) session store, the
// two collaborators every flow component needs.
type testEnv struct {
	api   *authapi.Client
	store *session.Store

	// calls counts requests per path.
	calls map[string]*atomic.Int64
}

func (e *testEnv) callCount(path string) int64 {
	c, ok := e.calls[path]
	if !ok {
		return 0
	}
	return c.Load()
}

// newTestEnv builds the environment around the given per-path handlers.
// Paths without a handler respond with a generic success envelope.
func newTestEnv(t *testing.T, handlers map[string]http.HandlerFunc) *testEnv {
	t.Helper()

	cryptox.ResetMasterKeyForTesting()
	t.Setenv("GAMEHIVE_MASTER_KEY", "flow-test-key")

	env := &testEnv{calls: make(map[string]*atomic.Int64)}
	for _, path := range []string{
		"/auth/signup", "/auth/login", "/auth/verify-otp",
		"/auth/resend-otp", "/auth/forgot-password", "/auth/reset-password",
	} {
		env.calls[path] = &atomic.Int64{}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := env.calls[r.URL.Path]; ok {
			c.Add(1)
		}
		if h, ok := handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	t.Cleanup(srv.Close)
	env.api = authapi.NewClient(srv.URL)

	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	env.store = store

	return env
}

// respondSession writes a success envelope carrying a user and token.
func respondSession(t *testing.T, w http.ResponseWriter, user map[string]any, token string) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    map[string]any{"user": user, "token": token},
	}))
}

// respondFailure writes a failure envelope with the given message.
func respondFailure(t *testing.T, w http.ResponseWriter, status int, message string) {
	t.Helper()
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	}))
}

// fillCode types a 6-digit code into anything with the widget entry surface.
func fillCode(t *testing.T, enter func(int, string) bool, code string) {
	t.Helper()
	require.Len(t, code, CodeLength)
	for i, r := range code {
		require.True(t, enter(i, string(r)))
	}
}
