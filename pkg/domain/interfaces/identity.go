package interfaces

import (
	"context"

	"github.com/gasyway/gasyway/pkg/domain/model"
)

// IdentityDirectory is the identity provider's account directory
type IdentityDirectory interface {
	// ListIdentities returns every account of the directory
	ListIdentities(ctx context.Context) ([]*model.Identity, error)

	// GetIdentity returns one account, or an error wrapping ErrNotFound
	GetIdentity(ctx context.Context, id model.UserID) (*model.Identity, error)

	// UpdateIdentityMetadata merges patch into the account's metadata.
	// Reconciliation never calls it: the directory is the source of truth for roles.
	UpdateIdentityMetadata(ctx context.Context, id model.UserID, patch map[string]any) error
}
