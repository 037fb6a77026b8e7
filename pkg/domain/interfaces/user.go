package interfaces

import (
	"context"

	"github.com/gasyway/gasyway/pkg/domain/model"
)

// UserRepository provides database operations for the application's users table
type UserRepository interface {
	// List returns every row, ordered by creation time then ID
	List(ctx context.Context) ([]*model.User, error)

	// Get returns one row, or an error wrapping ErrNotFound
	Get(ctx context.Context, id model.UserID) (*model.User, error)

	// Insert creates a row. It never overwrites: an existing ID yields an error wrapping
	// ErrAlreadyExists.
	Insert(ctx context.Context, user *model.User) error

	// Update applies patch to an existing row, or returns an error wrapping ErrNotFound
	Update(ctx context.Context, id model.UserID, patch *model.UserPatch) error

	// Delete removes a row. Deleting an absent row succeeds.
	Delete(ctx context.Context, id model.UserID) error
}
