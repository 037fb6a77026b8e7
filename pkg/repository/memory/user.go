package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[model.UserID]*model.User
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[model.UserID]*model.User),
	}
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		userCopy := *user
		users = append(users, &userCopy)
	}

	slices.SortFunc(users, func(a, b *model.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return users, nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("user_id", id))
	}

	userCopy := *user
	return &userCopy, nil
}

func (r *userRepository) Insert(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "user already exists", goerr.V("user_id", user.ID))
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	return nil
}

func (r *userRepository) Update(ctx context.Context, id model.UserID, patch *model.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("user_id", id))
	}

	updated := *user
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user patch", goerr.V("user_id", id))
	}

	r.users[id] = &updated
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id model.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}
