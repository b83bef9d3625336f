package mutation

import (
	"context"
	"fmt"

	"github.com/epanel-tools/epanel/pkg/authz"
)

// Writer issues the remote writes. Implemented by sdk.Client.
type Writer interface {
	CreateItem(ctx context.Context, collection string, payload, out any) error
	UpdateItem(ctx context.Context, collection string, id int, payload, out any) error
	DeleteItem(ctx context.Context, collection string, id int, out any) error
}

// Invalidator is the slice of the query cache the coordinator needs:
// coarse invalidation by collection name.
type Invalidator interface {
	InvalidateCollection(collection string)
}

// CredentialSource reports the active credential. Implemented by
// session.Store.
type CredentialSource interface {
	Token() string
}

// Coordinator executes write operations and keeps cached reads consistent
// afterwards. It never mutates cache entries directly: a successful write
// only marks the affected collection stale, so correctness is re-established
// by the next read re-fetching. On failure the caches are left untouched.
type Coordinator struct {
	api    Writer
	creds  CredentialSource
	caches []Invalidator
}

// NewCoordinator creates a coordinator invalidating the given caches after
// successful writes.
func NewCoordinator(api Writer, creds CredentialSource, caches ...Invalidator) *Coordinator {
	return &Coordinator{
		api:    api,
		creds:  creds,
		caches: caches,
	}
}

// Register adds another cache to invalidate after successful writes.
func (m *Coordinator) Register(cache Invalidator) {
	m.caches = append(m.caches, cache)
}

// Create adds an item to the collection. The created item is decoded into
// out when out is non-nil.
func (m *Coordinator) Create(ctx context.Context, collection string, payload, out any) error {
	if err := m.authorize(); err != nil {
		return err
	}
	if err := m.api.CreateItem(ctx, collection, payload, out); err != nil {
		return fmt.Errorf("create %s: %w", collection, err)
	}
	m.invalidate(collection)
	return nil
}

// Update replaces fields of an existing item.
func (m *Coordinator) Update(ctx context.Context, collection string, id int, payload, out any) error {
	if err := m.authorize(); err != nil {
		return err
	}
	if err := m.api.UpdateItem(ctx, collection, id, payload, out); err != nil {
		return fmt.Errorf("update %s/%d: %w", collection, id, err)
	}
	m.invalidate(collection)
	return nil
}

// Delete removes an item.
func (m *Coordinator) Delete(ctx context.Context, collection string, id int, out any) error {
	if err := m.authorize(); err != nil {
		return err
	}
	if err := m.api.DeleteItem(ctx, collection, id, out); err != nil {
		return fmt.Errorf("delete %s/%d: %w", collection, id, err)
	}
	m.invalidate(collection)
	return nil
}

// authorize refuses writes without a credential before any network call.
func (m *Coordinator) authorize() error {
	if m.creds.Token() == "" {
		return &authz.AuthorizationError{Reason: "no credential present"}
	}
	return nil
}

func (m *Coordinator) invalidate(collection string) {
	for _, c := range m.caches {
		c.InvalidateCollection(collection)
	}
}
