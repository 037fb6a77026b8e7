package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/domain/types"
	"github.com/gasyway/gasyway/pkg/usecase"
)

func TestNoAuthnUseCase(t *testing.T) {
	sub := "no-auth"
	email := "ops@gasyway.mg"

	uc := usecase.NewNoAuthnUseCase(sub, email)

	t.Run("Authenticate returns the configured admin for any token", func(t *testing.T) {
		for _, token := range []string{"", "garbage", "eyJhbGciOiJub25lIn0.e30."} {
			p, err := uc.Authenticate(context.Background(), token)
			gt.NoError(t, err).Required()

			gt.Value(t, p.Sub).Equal(sub)
			gt.Value(t, p.Email).Equal(email)
			gt.Value(t, p.Role).Equal(types.RoleAdmin)
			gt.Bool(t, p.IsAdmin()).True()
		}
	})

	t.Run("IsNoAuthn returns true", func(t *testing.T) {
		gt.Bool(t, uc.IsNoAuthn()).True()
	})
}

func TestNoAuthnUseCaseImplementsInterface(t *testing.T) {
	// Compilation fails if NoAuthnUseCase stops satisfying AdminAuthenticator
	var _ usecase.AdminAuthenticator = usecase.NewNoAuthnUseCase("sub", "email")
}
