package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vraj-wappnet/go-hms-client/auth"
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/session/storagefake"
)

func TestBootstrapRestoresValidSession(t *testing.T) {
	storage := storagefake.New()
	storage.Prime(session.Session{
		AccessToken:   "A1",
		RefreshToken:  "R1",
		User:          doctorUser(),
		Authenticated: true,
	})

	f := newServiceFixture(t, http.NewServeMux(), auth.WithStorage(storage))
	require.False(t, f.service.Ready())

	require.NoError(t, f.service.Bootstrap(context.Background()))

	require.True(t, f.service.Ready())
	snap := f.store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "A1", snap.AccessToken)
	require.Equal(t, "u42", snap.User.ID)
}

func TestBootstrapRejectsSessionMissingUser(t *testing.T) {
	storage := storagefake.New()
	storage.Prime(session.Session{
		AccessToken:   "A1",
		RefreshToken:  "R1",
		Authenticated: true,
	})

	f := newServiceFixture(t, http.NewServeMux(), auth.WithStorage(storage))
	require.NoError(t, f.service.Bootstrap(context.Background()))

	require.True(t, f.service.Ready())
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestBootstrapRejectsSessionMissingTokens(t *testing.T) {
	storage := storagefake.New()
	storage.Prime(session.Session{
		AccessToken:   "A1",
		User:          doctorUser(),
		Authenticated: true,
	})

	f := newServiceFixture(t, http.NewServeMux(), auth.WithStorage(storage))
	require.NoError(t, f.service.Bootstrap(context.Background()))

	require.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestBootstrapWithUnreadableStorage(t *testing.T) {
	storage := storagefake.New()
	storage.LoadErr = errors.New("corrupt storage")

	f := newServiceFixture(t, http.NewServeMux(), auth.WithStorage(storage))
	require.NoError(t, f.service.Bootstrap(context.Background()))

	require.True(t, f.service.Ready())
	require.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestBootstrapWithoutStorage(t *testing.T) {
	f := newServiceFixture(t, http.NewServeMux())

	require.NoError(t, f.service.Bootstrap(context.Background()))

	require.True(t, f.service.Ready())
	require.False(t, f.store.Snapshot().Authenticated)
}
