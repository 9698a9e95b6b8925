package session_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/session/storagefake"
	"github.com/vraj-wappnet/go-hms-client/users"
)

func testUser() *users.User {
	return &users.User{
		ID:        "u1",
		Email:     "john.doe@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Role:      users.RolePatient,
	}
}

// invariantHolds checks the store invariant: authenticated implies an access
// token and a user are present.
func invariantHolds(snap session.Session) bool {
	if !snap.Authenticated {
		return true
	}
	return snap.AccessToken != "" && snap.User != nil
}

func TestStoreStartsEmpty(t *testing.T) {
	store := session.NewStore()

	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.Empty(t, snap.AccessToken)
	require.Empty(t, snap.RefreshToken)
	require.Nil(t, snap.User)
	require.Empty(t, snap.Error)
}

func TestSetSession(t *testing.T) {
	store := session.NewStore()
	store.SetError("previous failure")

	store.SetSession("A1", "R1", testUser())

	snap := store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "A1", snap.AccessToken)
	require.Equal(t, "R1", snap.RefreshToken)
	require.Equal(t, "u1", snap.User.ID)
	require.Empty(t, snap.Error, "SetSession must clear a stored error")
	require.True(t, invariantHolds(snap))
}

func TestSetErrorDoesNotTouchAuthState(t *testing.T) {
	store := session.NewStore()
	store.SetSession("A1", "R1", testUser())

	store.SetError("something failed")

	snap := store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "A1", snap.AccessToken)
	require.Equal(t, "something failed", snap.Error)

	store.ClearError()
	snap = store.Snapshot()
	require.Empty(t, snap.Error)
	require.True(t, snap.Authenticated)
}

func TestResetSessionIsIdempotent(t *testing.T) {
	store := session.NewStore()
	store.SetSession("A1", "R1", testUser())

	store.ResetSession()
	once := store.Snapshot()

	store.ResetSession()
	twice := store.Snapshot()

	require.Equal(t, session.Session{}, once)
	require.Equal(t, once, twice)
}

// TestInvariantAcrossMutations drives the store through every mutation in
// several orders and checks the invariant after each step.
func TestInvariantAcrossMutations(t *testing.T) {
	mutations := map[string]func(*session.Store){
		"setSession":   func(s *session.Store) { s.SetSession("A1", "R1", testUser()) },
		"setNoRefresh": func(s *session.Store) { s.SetSession("A2", "", testUser()) },
		"setError":     func(s *session.Store) { s.SetError("boom") },
		"clearError":   func(s *session.Store) { s.ClearError() },
		"reset":        func(s *session.Store) { s.ResetSession() },
	}

	for firstName, first := range mutations {
		for secondName, second := range mutations {
			store := session.NewStore()
			first(store)
			require.True(t, invariantHolds(store.Snapshot()), "%s then %s", firstName, secondName)
			second(store)
			require.True(t, invariantHolds(store.Snapshot()), "%s then %s", firstName, secondName)
		}
	}
}

func TestMutationsPersistSnapshots(t *testing.T) {
	storage := storagefake.New()
	store := session.NewStore(session.WithStorage(storage))

	store.SetSession("A1", "R1", testUser())
	store.ResetSession()

	saves := storage.Saves()
	require.Len(t, saves, 2)
	require.Equal(t, "A1", saves[0].AccessToken)
	require.Equal(t, session.Session{}, saves[1])
}

func TestPersistenceFailureDoesNotFailMutation(t *testing.T) {
	storage := storagefake.New()
	storage.SaveErr = errors.New("disk full")

	store := session.NewStore(session.WithStorage(storage))
	store.SetSession("A1", "R1", testUser())

	require.True(t, store.Snapshot().Authenticated)
}

func TestSessionValid(t *testing.T) {
	tests := []struct {
		name string
		snap session.Session
		want bool
	}{
		{name: "complete", snap: session.Session{AccessToken: "A", RefreshToken: "R", User: testUser(), Authenticated: true}, want: true},
		{name: "missing user", snap: session.Session{AccessToken: "A", RefreshToken: "R", Authenticated: true}, want: false},
		{name: "missing refresh token", snap: session.Session{AccessToken: "A", User: testUser(), Authenticated: true}, want: false},
		{name: "missing access token", snap: session.Session{RefreshToken: "R", User: testUser(), Authenticated: true}, want: false},
		{name: "not authenticated", snap: session.Session{AccessToken: "A", RefreshToken: "R", User: testUser()}, want: false},
		{name: "empty", snap: session.Session{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.snap.Valid())
		})
	}
}
