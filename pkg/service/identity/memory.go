package identity

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
)

// Memory is an in-process identity directory for development and tests. Identities are
// listed in the order they were added.
type Memory struct {
	mu         sync.RWMutex
	order      []model.UserID
	identities map[model.UserID]*model.Identity
}

var _ interfaces.IdentityDirectory = &Memory{}

func NewMemory(identities ...*model.Identity) *Memory {
	m := &Memory{
		identities: make(map[model.UserID]*model.Identity),
	}
	for _, identity := range identities {
		m.Put(identity)
	}
	return m
}

// Put adds identity or replaces the one with the same ID, keeping its position
func (m *Memory) Put(identity *model.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[identity.ID]; !ok {
		m.order = append(m.order, identity.ID)
	}
	m.identities[identity.ID] = identity.Clone()
}

// Remove deletes the identity with id, if any
func (m *Memory) Remove(id model.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[id]; !ok {
		return
	}
	delete(m.identities, id)
	m.order = slices.DeleteFunc(m.order, func(v model.UserID) bool { return v == id })
}

func (m *Memory) ListIdentities(ctx context.Context) ([]*model.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	identities := make([]*model.Identity, 0, len(m.order))
	for _, id := range m.order {
		identities = append(identities, m.identities[id].Clone())
	}
	return identities, nil
}

func (m *Memory) GetIdentity(ctx context.Context, id model.UserID) (*model.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	identity, ok := m.identities[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "identity not found", goerr.V("user_id", id))
	}
	return identity.Clone(), nil
}

func (m *Memory) UpdateIdentityMetadata(ctx context.Context, id model.UserID, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	identity, ok := m.identities[id]
	if !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "identity not found", goerr.V("user_id", id))
	}

	updated := identity.Clone()
	if updated.Metadata == nil {
		updated.Metadata = make(map[string]any, len(patch))
	}
	maps.Copy(updated.Metadata, patch)
	m.identities[id] = updated
	return nil
}
