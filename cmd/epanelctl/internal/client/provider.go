package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/auth"
	"github.com/epanel-tools/epanel/pkg/authz"
	"github.com/epanel-tools/epanel/pkg/sdk"
	"github.com/epanel-tools/epanel/pkg/session"
)

// ErrNotLoggedIn is returned when a command needs a session and none is
// stored.
var ErrNotLoggedIn = errors.New("not logged in; please run `epanelctl auth login`")

// Provider lazily wires the session store, authorization policy and API
// clients shared by all epanelctl commands.
type Provider struct {
	serverURL string

	sessionOnce sync.Once
	session     *session.Store
	sessionErr  error

	policyOnce sync.Once
	policy     *authz.Policy
	policyErr  error

	sdkOnce sync.Once
	sdkCli  *sdk.Client
	sdkErr  error
}

// NewProvider constructs a new Provider bound to the given server URL.
func NewProvider(serverURL string) *Provider {
	return &Provider{serverURL: serverURL}
}

// Session returns the session store, restoring any persisted session on
// first use. Restore failures are treated as "no session", never as errors.
func (p *Provider) Session() (*session.Store, error) {
	p.sessionOnce.Do(func() {
		store, err := auth.NewFileStore()
		if err != nil {
			p.sessionErr = fmt.Errorf("failed to create credential store: %w", err)
			return
		}
		// The login exchange itself runs unauthenticated.
		p.session = session.NewStore(store, sdk.NewClient(p.serverURL))
		p.session.Restore()
	})
	return p.session, p.sessionErr
}

// Policy returns the authorization policy.
func (p *Provider) Policy() (*authz.Policy, error) {
	p.policyOnce.Do(func() {
		p.policy, p.policyErr = authz.NewPolicy()
	})
	return p.policy, p.policyErr
}

// SDKClient returns an API client that attaches the stored bearer credential
// to every request.
func (p *Provider) SDKClient() (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		sess, err := p.Session()
		if err != nil {
			p.sdkErr = err
			return
		}
		snap := sess.Current()
		if !snap.Authenticated() {
			p.sdkErr = ErrNotLoggedIn
			return
		}

		source := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: snap.Token,
			TokenType:   "Bearer",
		})
		p.sdkCli = sdk.NewClient(p.serverURL, sdk.WithHTTPClient(oauth2.NewClient(context.Background(), source)))
	})
	return p.sdkCli, p.sdkErr
}

// Require checks the capability against the current identity before any
// network call is issued, then returns the session and an authenticated
// client. Denials surface as *authz.AuthorizationError.
func (p *Provider) Require(capability authz.Capability) (*session.Store, *sdk.Client, error) {
	sess, err := p.Session()
	if err != nil {
		return nil, nil, err
	}
	snap := sess.Current()
	if !snap.Authenticated() {
		return nil, nil, ErrNotLoggedIn
	}

	policy, err := p.Policy()
	if err != nil {
		return nil, nil, err
	}
	if !policy.Can(snap.Identity, capability) {
		return nil, nil, &authz.AuthorizationError{
			Reason: fmt.Sprintf("role %s lacks %s", snap.Identity.Role, capability),
		}
	}

	cli, err := p.SDKClient()
	if err != nil {
		return nil, nil, err
	}
	return sess, cli, nil
}
