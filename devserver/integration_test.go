package devserver_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vraj-wappnet/go-hms-client/auth"
	"github.com/vraj-wappnet/go-hms-client/devserver"
	"github.com/vraj-wappnet/go-hms-client/guard"
	"github.com/vraj-wappnet/go-hms-client/httpclient"
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/session/storagefake"
	"github.com/vraj-wappnet/go-hms-client/users"
	fakeuserrepo "github.com/vraj-wappnet/go-hms-client/users/repofake"
)

// fakeClock is a mutable time source shared with the token issuer so tests
// can expire access tokens without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestFullSessionLifecycle drives the SDK against the development server:
// bootstrap, login, an authenticated request, a transparent refresh after the
// access token expires, persistence across a restart, and logout.
func TestFullSessionLifecycle(t *testing.T) {
	clock := &fakeClock{now: time.Now()}

	repo := fakeuserrepo.NewFakeUserRepo()
	issuer := devserver.NewTokenIssuer(testSecret,
		devserver.WithTokenExpiry(15*time.Minute, 7*24*time.Hour),
		devserver.WithNowFunc(clock.Now),
	)
	srv, err := devserver.New(repo, issuer)
	require.NoError(t, err)
	require.NoError(t, srv.SeedUsers([]devserver.SeedUser{{
		Email:     "doc@example.com",
		Password:  "Doct0rSecret",
		FirstName: "Gregory",
		LastName:  "House",
		Role:      "doctor",
	}}))

	backend := httptest.NewServer(srv)
	t.Cleanup(backend.Close)

	storage := storagefake.New()
	store := session.NewStore(session.WithStorage(storage))
	client, err := httpclient.New(backend.URL, store)
	require.NoError(t, err)
	service, err := auth.NewService(store, client, auth.WithStorage(storage))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, service.Bootstrap(ctx))
	require.True(t, service.Ready())

	g := guard.New(store, service.Ready, guard.DefaultRules()...)
	require.Equal(t, guard.RedirectLogin, g.Check("/doctor/dashboard"))

	// Login and hit a protected resource.
	user, err := service.Login(ctx, auth.LoginParams{Email: "doc@example.com", Password: "Doct0rSecret"})
	require.NoError(t, err)
	require.Equal(t, users.RoleDoctor, user.Role)
	require.Equal(t, guard.Render, g.Check("/doctor/dashboard"))
	require.Equal(t, guard.RedirectDashboard, g.Check("/admin/dashboard"))

	var me users.User
	require.NoError(t, client.Get(ctx, "/users/me", nil, &me))
	require.Equal(t, "doc@example.com", me.Email)

	// Expire the access token; the next request refreshes transparently.
	staleToken := store.Snapshot().AccessToken
	clock.Advance(20 * time.Minute)

	require.NoError(t, client.Get(ctx, "/users/me", nil, &me))
	require.Equal(t, "doc@example.com", me.Email)
	require.NotEqual(t, staleToken, store.Snapshot().AccessToken)

	// A fresh process restores the persisted session and keeps working.
	restartedStore := session.NewStore(session.WithStorage(storage))
	restartedClient, err := httpclient.New(backend.URL, restartedStore)
	require.NoError(t, err)
	restartedService, err := auth.NewService(restartedStore, restartedClient, auth.WithStorage(storage))
	require.NoError(t, err)
	require.NoError(t, restartedService.Bootstrap(ctx))
	require.True(t, restartedStore.Snapshot().Authenticated)
	require.NoError(t, restartedClient.Get(ctx, "/users/me", nil, &me))

	// Logout resets and persists the empty session.
	restartedService.Logout()
	require.Equal(t, session.Session{}, restartedStore.Snapshot())

	loaded, err := storage.Load()
	require.NoError(t, err)
	require.False(t, loaded.Authenticated)
}

// TestExpiredRefreshTokenLogsOut covers the terminal path: both tokens are
// dead, so the failed request surfaces ErrSessionExpired and the session is
// reset.
func TestExpiredRefreshTokenLogsOut(t *testing.T) {
	clock := &fakeClock{now: time.Now()}

	repo := fakeuserrepo.NewFakeUserRepo()
	issuer := devserver.NewTokenIssuer(testSecret,
		devserver.WithTokenExpiry(15*time.Minute, time.Hour),
		devserver.WithNowFunc(clock.Now),
	)
	srv, err := devserver.New(repo, issuer)
	require.NoError(t, err)
	require.NoError(t, srv.SeedUsers([]devserver.SeedUser{{
		Email: "pat@example.com", Password: "Pat1entSecret", FirstName: "A", LastName: "Shah", Role: "patient",
	}}))

	backend := httptest.NewServer(srv)
	t.Cleanup(backend.Close)

	store := session.NewStore()
	client, err := httpclient.New(backend.URL, store)
	require.NoError(t, err)
	service, err := auth.NewService(store, client)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = service.Login(ctx, auth.LoginParams{Email: "pat@example.com", Password: "Pat1entSecret"})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	err = client.Get(ctx, "/users/me", nil, nil)
	require.ErrorIs(t, err, session.ErrSessionExpired)
	require.Equal(t, session.Session{}, store.Snapshot())

	g := guard.New(store, service.Ready, guard.DefaultRules()...)
	require.Equal(t, guard.RedirectLogin, g.Check("/patient/dashboard"))
}
