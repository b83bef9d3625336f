package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epanel-tools/epanel/pkg/authz"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

// memStore is an in-memory CredentialStore.
type memStore struct {
	creds   *Credentials
	loadErr error
	saveErr error
	deletes int
}

func (s *memStore) SaveCredentials(creds *Credentials) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.creds = creds
	return nil
}

func (s *memStore) LoadCredentials() (*Credentials, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.creds, nil
}

func (s *memStore) DeleteCredentials() error {
	s.creds = nil
	s.deletes++
	return nil
}

// fakeExchanger is a LoginExchanger that records calls.
type fakeExchanger struct {
	result *sdk.LoginResult
	err    error
	calls  int
}

func (f *fakeExchanger) Login(ctx context.Context, username, password string) (*sdk.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestRestore(t *testing.T) {
	identity := &sdk.Identity{ID: 1, Username: "emilys", FirstName: "Emily", Role: "admin"}

	t.Run("round trip", func(t *testing.T) {
		persist := &memStore{creds: &Credentials{AccessToken: "opaque-token", Identity: identity}}
		store := NewStore(persist, &fakeExchanger{})

		assert.True(t, store.Current().Initializing)
		store.Restore()

		snap := store.Current()
		assert.False(t, snap.Initializing)
		assert.True(t, snap.Authenticated())
		assert.Equal(t, "opaque-token", snap.Token)
		assert.Equal(t, identity, snap.Identity)
	})

	t.Run("missing data yields empty session", func(t *testing.T) {
		persist := &memStore{loadErr: errors.New("not logged in")}
		store := NewStore(persist, &fakeExchanger{})

		store.Restore()

		snap := store.Current()
		assert.False(t, snap.Initializing)
		assert.False(t, snap.Authenticated())
		assert.Nil(t, snap.Identity)
	})

	t.Run("incomplete pair is discarded", func(t *testing.T) {
		persist := &memStore{creds: &Credentials{AccessToken: "tok"}}
		store := NewStore(persist, &fakeExchanger{})

		store.Restore()

		assert.False(t, store.Current().Authenticated())
	})

	t.Run("expired token is discarded", func(t *testing.T) {
		token := signedToken(t, time.Now().Add(-time.Hour))
		persist := &memStore{creds: &Credentials{AccessToken: token, Identity: identity}}
		store := NewStore(persist, &fakeExchanger{})

		store.Restore()

		assert.False(t, store.Current().Authenticated())
	})

	t.Run("unexpired token is kept", func(t *testing.T) {
		token := signedToken(t, time.Now().Add(time.Hour))
		persist := &memStore{creds: &Credentials{AccessToken: token, Identity: identity}}
		store := NewStore(persist, &fakeExchanger{})

		store.Restore()

		assert.True(t, store.Current().Authenticated())
	})
}

func TestLogin(t *testing.T) {
	remote := &sdk.LoginResult{
		AccessToken: "remote-token",
		Identity: sdk.Identity{
			ID:        1,
			Username:  "emilys",
			FirstName: "Emily",
			LastName:  "Johnson",
			Role:      "customer", // remote role must lose to the local table
		},
	}

	t.Run("local mismatch fails fast without remote call", func(t *testing.T) {
		persist := &memStore{}
		api := &fakeExchanger{result: remote}
		store := NewStore(persist, api)

		err := store.Login(context.Background(), "emilys", "wrong")

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, 0, api.calls, "remote exchange must not be contacted")
		assert.False(t, store.Current().Authenticated())
	})

	t.Run("unknown user fails fast", func(t *testing.T) {
		api := &fakeExchanger{result: remote}
		store := NewStore(&memStore{}, api)

		err := store.Login(context.Background(), "nobody", "pass")

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, 0, api.calls)
	})

	t.Run("remote rejection clears session and carries server message", func(t *testing.T) {
		persist := &memStore{}
		api := &fakeExchanger{err: &sdk.APIError{StatusCode: 400, Message: "Invalid credentials"}}
		store := NewStore(persist, api)

		err := store.Login(context.Background(), "emilys", "emilyspass")

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Invalid credentials", authErr.Message)
		assert.False(t, store.Current().Authenticated())
		assert.Nil(t, persist.creds)
	})

	t.Run("transport failure is not an authentication error", func(t *testing.T) {
		api := &fakeExchanger{err: errors.New("connection refused")}
		store := NewStore(&memStore{}, api)

		err := store.Login(context.Background(), "emilys", "emilyspass")

		require.Error(t, err)
		var authErr *AuthenticationError
		assert.False(t, errors.As(err, &authErr))
		assert.False(t, store.Current().Authenticated())
	})

	t.Run("success merges local role under remote profile", func(t *testing.T) {
		persist := &memStore{}
		api := &fakeExchanger{result: remote}
		store := NewStore(persist, api)

		require.NoError(t, store.Login(context.Background(), "emilys", "emilyspass"))

		snap := store.Current()
		require.True(t, snap.Authenticated())
		assert.Equal(t, "remote-token", snap.Token)
		assert.Equal(t, "Emily", snap.Identity.FirstName)
		assert.Equal(t, string(authz.RoleAdmin), snap.Identity.Role, "local role always wins")

		require.NotNil(t, persist.creds)
		assert.Equal(t, "remote-token", persist.creds.AccessToken)
		assert.Equal(t, snap.Identity, persist.creds.Identity)
	})

	t.Run("persistence failure clears session", func(t *testing.T) {
		persist := &memStore{saveErr: errors.New("disk full")}
		api := &fakeExchanger{result: remote}
		store := NewStore(persist, api)

		err := store.Login(context.Background(), "emilys", "emilyspass")

		require.Error(t, err)
		assert.False(t, store.Current().Authenticated())
	})
}

func TestLogout(t *testing.T) {
	identity := &sdk.Identity{ID: 1, Role: "admin"}
	persist := &memStore{creds: &Credentials{AccessToken: "tok", Identity: identity}}
	store := NewStore(persist, &fakeExchanger{})
	store.Restore()
	require.True(t, store.Current().Authenticated())

	store.Logout()
	assert.False(t, store.Current().Authenticated())
	assert.Nil(t, persist.creds)

	// Idempotent: a second logout is harmless.
	store.Logout()
	assert.False(t, store.Current().Authenticated())
	assert.Equal(t, 2, persist.deletes)
}

func TestFingerprint(t *testing.T) {
	store := NewStore(&memStore{}, &fakeExchanger{})
	assert.Empty(t, store.Fingerprint(), "unauthenticated session has no fingerprint")

	persist := &memStore{creds: &Credentials{AccessToken: "tok-a", Identity: &sdk.Identity{ID: 1, Role: "admin"}}}
	a := NewStore(persist, &fakeExchanger{})
	a.Restore()

	persistB := &memStore{creds: &Credentials{AccessToken: "tok-b", Identity: &sdk.Identity{ID: 1, Role: "admin"}}}
	b := NewStore(persistB, &fakeExchanger{})
	b.Restore()

	assert.NotEmpty(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), a.Fingerprint(), "fingerprint is stable")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint(), "different credentials yield different fingerprints")
}

func TestSubscribe(t *testing.T) {
	remote := &sdk.LoginResult{AccessToken: "tok", Identity: sdk.Identity{ID: 1, Username: "emilys"}}
	store := NewStore(&memStore{}, &fakeExchanger{result: remote})

	var got []Snapshot
	cancel := store.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	require.NoError(t, store.Login(context.Background(), "emilys", "emilyspass"))
	require.Len(t, got, 1)
	assert.True(t, got[0].Authenticated())

	store.Logout()
	require.Len(t, got, 2)
	assert.False(t, got[1].Authenticated())

	cancel()
	store.Logout()
	assert.Len(t, got, 2, "cancelled subscriber no longer notified")
}
