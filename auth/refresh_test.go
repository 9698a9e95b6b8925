package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vraj-wappnet/go-hms-client/auth"
	"github.com/vraj-wappnet/go-hms-client/httpclient"
	"github.com/vraj-wappnet/go-hms-client/session"
)

// refreshBackend counts refresh calls and rotates the pair it accepts, like
// the real backend does.
type refreshBackend struct {
	mu           sync.Mutex
	calls        int32
	currentToken string
	latency      time.Duration
}

func (b *refreshBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.calls, 1)
		if b.latency > 0 {
			time.Sleep(b.latency)
		}

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		defer b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if req.RefreshToken != b.currentToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid refresh token"})
			return
		}
		b.currentToken = "R2"
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "A2",
			"refreshToken": "R2",
		})
	}
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	backend := &refreshBackend{currentToken: "R1"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, backend.handler(t))

	f := newServiceFixture(t, mux)
	f.store.SetSession("A1", "R1", doctorUser())

	require.NoError(t, f.service.Refresh(context.Background()))

	snap := f.store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "A2", snap.AccessToken)
	require.Equal(t, "R2", snap.RefreshToken)
	require.Equal(t, "u42", snap.User.ID, "the user survives a token rotation")
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	backend := &refreshBackend{currentToken: "R1"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, backend.handler(t))

	f := newServiceFixture(t, mux)

	err := f.service.Refresh(context.Background())

	require.ErrorIs(t, err, session.ErrRefreshUnavailable)
	require.ErrorIs(t, err, session.ErrSessionExpired)
	require.Zero(t, atomic.LoadInt32(&backend.calls), "no request without a refresh token")
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestRefreshWithExpiredToken(t *testing.T) {
	backend := &refreshBackend{currentToken: "somebody-elses-token"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, backend.handler(t))

	f := newServiceFixture(t, mux)
	f.store.SetSession("A1", "R1", doctorUser())

	err := f.service.Refresh(context.Background())

	require.ErrorIs(t, err, session.ErrSessionExpired)
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestRefreshMalformedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken": "A2"}`))
	})

	f := newServiceFixture(t, mux)
	f.store.SetSession("A1", "R1", doctorUser())

	err := f.service.Refresh(context.Background())

	require.ErrorIs(t, err, session.ErrSessionExpired)
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

// TestRefreshFailsClosedAfterLogout simulates a logout racing an in-flight
// refresh: the store is reset while the refresh call is on the wire, so the
// fresh tokens must be discarded rather than written into the dead session.
func TestRefreshFailsClosedAfterLogout(t *testing.T) {
	var logout func()
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		logout()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "A2",
			"refreshToken": "R2",
		})
	})

	f := newServiceFixture(t, mux)
	logout = f.service.Logout
	f.store.SetSession("A1", "R1", doctorUser())

	err := f.service.Refresh(context.Background())

	require.ErrorIs(t, err, session.ErrSessionExpired)
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

// TestConcurrentRefreshesCoalesce checks that simultaneous refresh calls are
// collapsed into a single backend request whose outcome every caller shares.
func TestConcurrentRefreshesCoalesce(t *testing.T) {
	backend := &refreshBackend{currentToken: "R1", latency: 200 * time.Millisecond}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, backend.handler(t))

	f := newServiceFixture(t, mux)
	f.store.SetSession("A1", "R1", doctorUser())

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.service.Refresh(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "caller %d", i)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&backend.calls))
	require.Equal(t, "A2", f.store.Snapshot().AccessToken)
}

// TestConcurrentUnauthorizedRequestsShareOneRefresh drives the full client
// path: several requests hit a 401 at the same time, exactly one refresh
// reaches the backend, and every request succeeds on its replay.
func TestConcurrentUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	backend := &refreshBackend{currentToken: "R1", latency: 300 * time.Millisecond}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth.RefreshPath, backend.handler(t))
	mux.HandleFunc("GET /appointments", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "token expired"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	})

	f := newServiceFixture(t, mux)
	f.store.SetSession("A1", "R1", doctorUser())

	client, err := httpclient.New(f.server.URL, f.store)
	require.NoError(t, err)
	client.SetRefresher(f.service)

	const callers = 6
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/appointments", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "caller %d", i)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&backend.calls))

	snap := f.store.Snapshot()
	require.Equal(t, "A2", snap.AccessToken)
	require.Equal(t, "R2", snap.RefreshToken)
	require.NotNil(t, snap.User)
}
