package usecase

import (
	"time"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
)

type UseCases struct {
	repo      interfaces.Repository
	directory interfaces.IdentityDirectory
	clock     func() time.Time

	Sync *SyncUseCase
}

type Option func(*UseCases)

// WithClock replaces time.Now for every timestamp the use cases write
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(repo interfaces.Repository, directory interfaces.IdentityDirectory, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		directory: directory,
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Sync = NewSyncUseCase(repo, directory, uc.clock)

	return uc
}
