package usecase

import (
	"context"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

// NoAuthnUseCase accepts every request as the configured admin (for development/testing)
type NoAuthnUseCase struct {
	sub   string
	email string
}

var _ AdminAuthenticator = &NoAuthnUseCase{}

func NewNoAuthnUseCase(sub, email string) *NoAuthnUseCase {
	return &NoAuthnUseCase{sub: sub, email: email}
}

// Authenticate ignores token and returns the configured admin
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	return &model.Principal{
		Sub:   uc.sub,
		Email: uc.email,
		Role:  types.RoleAdmin,
	}, nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
