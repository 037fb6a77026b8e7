package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/cli/config"
)

func TestIdentityConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend loads the seed file", func(t *testing.T) {
		path := writeFile(t, "identities.json", `[
  {"id": "u1", "email": "a@example.com", "user_metadata": {"role": "admin"}, "created_at": "2024-01-01T00:00:00Z"},
  {"id": "u2", "email": "b@example.com", "created_at": "2024-01-02T00:00:00Z"}
]`)

		dir, err := config.NewIdentityForTest(config.BackendMemory, "", "", path).Configure()
		gt.NoError(t, err).Required()

		identities, err := dir.ListIdentities(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, identities).Length(2).Required()
		gt.Value(t, identities[0].Email).Equal("a@example.com")
		gt.Value(t, identities[0].Metadata["role"]).Equal(any("admin"))
		gt.Value(t, identities[1].ID.String()).Equal("u2")
	})

	t.Run("memory backend without seed is empty", func(t *testing.T) {
		dir, err := config.NewIdentityForTest(config.BackendMemory, "", "", "").Configure()
		gt.NoError(t, err).Required()
		identities, err := dir.ListIdentities(ctx)
		gt.NoError(t, err)
		gt.Array(t, identities).Length(0)
	})

	t.Run("broken seed file", func(t *testing.T) {
		path := writeFile(t, "identities.json", `{"id":`)
		_, err := config.NewIdentityForTest(config.BackendMemory, "", "", path).Configure()
		gt.Error(t, err)
	})

	t.Run("gotrue requires a service key", func(t *testing.T) {
		_, err := config.NewIdentityForTest(config.BackendGoTrue, "https://example.supabase.co", "", "").Configure()
		gt.Error(t, err)
	})

	t.Run("gotrue backend", func(t *testing.T) {
		dir, err := config.NewIdentityForTest(config.BackendGoTrue, "https://example.supabase.co", "service-key", "").Configure()
		gt.NoError(t, err)
		gt.Value(t, dir).NotNil()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewIdentityForTest("ldap", "", "", "").Configure()
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}
