package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/epanel-tools/epanel/pkg/authz"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

// Credentials is the durable form of a session. Both fields are written
// together on login and removed together on logout; a pair with either field
// missing is treated as absent.
type Credentials struct {
	AccessToken string        `json:"access_token"`
	Identity    *sdk.Identity `json:"identity"`
}

// CredentialStore persists the credential/identity pair between runs.
type CredentialStore interface {
	SaveCredentials(*Credentials) error
	LoadCredentials() (*Credentials, error)
	DeleteCredentials() error
}

// LoginExchanger is the remote identity exchange consumed by Login.
// Implemented by sdk.Client.
type LoginExchanger interface {
	Login(ctx context.Context, username, password string) (*sdk.LoginResult, error)
}

// LocalUser is one entry of the local staff directory checked before the
// remote exchange. The role assigned here always wins over anything the
// remote profile carries.
type LocalUser struct {
	Password string
	Role     authz.Role
}

// DefaultUsers mirrors the staff accounts provisioned on the demo server.
var DefaultUsers = map[string]LocalUser{
	"emilys":   {Password: "emilyspass", Role: authz.RoleAdmin},
	"michaelw": {Password: "michaelwpass", Role: authz.RoleSalesManager},
	"sophiab":  {Password: "sophiabpass", Role: authz.RoleStockManager},
}

// AuthenticationError reports bad local or remote credentials. Any partial
// session is cleared before it is returned.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// Snapshot is a point-in-time view of the session. The credential is present
// iff the identity is.
type Snapshot struct {
	Identity     *sdk.Identity
	Token        string
	Initializing bool
}

// Authenticated reports whether a credential is present.
func (s Snapshot) Authenticated() bool { return s.Token != "" }

// StoreOptions configures session store construction.
type StoreOptions struct {
	Users map[string]LocalUser
}

// StoreOption mutates StoreOptions.
type StoreOption func(*StoreOptions)

// WithUsers overrides the local staff directory.
func WithUsers(users map[string]LocalUser) StoreOption {
	return func(opts *StoreOptions) {
		opts.Users = users
	}
}

// Store owns the process-wide session: the authenticated identity and its
// bearer credential. All mutation goes through Restore, Login and Logout;
// readers get consistent snapshots via Current.
type Store struct {
	persist CredentialStore
	api     LoginExchanger
	users   map[string]LocalUser

	mu           sync.Mutex
	identity     *sdk.Identity
	token        string
	initializing bool
	subscribers  map[uuid.UUID]func(Snapshot)
}

// NewStore creates an empty, initializing session store. Call Restore to load
// a persisted session.
func NewStore(persist CredentialStore, api LoginExchanger, optFns ...StoreOption) *Store {
	opts := StoreOptions{Users: DefaultUsers}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		persist:      persist,
		api:          api,
		users:        opts.Users,
		initializing: true,
		subscribers:  make(map[uuid.UUID]func(Snapshot)),
	}
}

// Restore loads a previously persisted session. Missing, malformed or expired
// data is treated as "no session": the failure is logged and the store is
// left empty. Restore never fails.
func (s *Store) Restore() {
	creds, err := s.persist.LoadCredentials()
	switch {
	case err != nil:
		log.Printf("session restore: %v", err)
	case creds == nil || creds.AccessToken == "" || creds.Identity == nil:
		log.Printf("session restore: incomplete persisted session, discarding")
	case tokenExpired(creds.AccessToken):
		log.Printf("session restore: access token expired, discarding")
	default:
		s.set(creds.Identity, creds.AccessToken)
		return
	}
	s.set(nil, "")
}

// Login authenticates a username and password. The local staff directory is
// checked first; only on a local match is the remote identity exchange
// contacted. The locally assigned role is merged over the remote profile.
// On any failure the session ends up cleared.
func (s *Store) Login(ctx context.Context, username, password string) error {
	local, ok := s.users[username]
	if !ok || local.Password != password {
		s.Logout()
		return &AuthenticationError{Message: "invalid credentials"}
	}

	result, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.Logout()
		var apiErr *sdk.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = "login failed"
			}
			return &AuthenticationError{Message: msg}
		}
		return fmt.Errorf("login exchange: %w", err)
	}

	identity := result.Identity
	identity.Role = string(local.Role)

	if err := s.persist.SaveCredentials(&Credentials{
		AccessToken: result.AccessToken,
		Identity:    &identity,
	}); err != nil {
		s.Logout()
		return fmt.Errorf("persist session: %w", err)
	}

	s.set(&identity, result.AccessToken)
	return nil
}

// Logout clears the session and its persisted copy. It is idempotent and has
// no failure mode: persistence trouble is logged and the in-memory session is
// cleared regardless.
func (s *Store) Logout() {
	if err := s.persist.DeleteCredentials(); err != nil {
		log.Printf("session logout: %v", err)
	}
	s.set(nil, "")
}

// Current returns a consistent snapshot of the session.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Token returns the bearer credential, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Fingerprint returns a short stable digest of the credential for embedding
// in cache keys, so entries from different logins never alias. Empty when
// unauthenticated.
func (s *Store) Fingerprint() string {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// Subscribe registers fn to run after every session change. The returned
// cancel function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := uuid.New()
	s.mu.Lock()
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// set applies the new session state atomically and notifies subscribers.
func (s *Store) set(identity *sdk.Identity, token string) {
	s.mu.Lock()
	s.identity = identity
	s.token = token
	s.initializing = false
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Identity:     s.identity,
		Token:        s.token,
		Initializing: s.initializing,
	}
}
