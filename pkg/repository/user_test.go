package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
	"github.com/gasyway/gasyway/pkg/repository/firestore"
	"github.com/gasyway/gasyway/pkg/repository/memory"
	"github.com/gasyway/gasyway/pkg/repository/postgres"
)

func newTestUser(createdAt time.Time) *model.User {
	id := model.UserID(uuid.NewString())
	return &model.User{
		ID:                  id,
		Email:               fmt.Sprintf("%s@example.com", id),
		Role:                types.RolePrestataire,
		Status:              types.UserStatusActive,
		FirstName:           "Rivo",
		LastName:            "Rakoto",
		Phone:               "+261340000000",
		GDPRConsent:         true,
		Locale:              "fr",
		FirstLoginCompleted: false,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
		LastLogin:           createdAt,
	}
}

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("Insert then Get returns every field", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser(now)
		gt.NoError(t, repo.User().Insert(ctx, user)).Required()

		got, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(user.ID)
		gt.Value(t, got.Email).Equal(user.Email)
		gt.Value(t, got.Role).Equal(user.Role)
		gt.Value(t, got.Status).Equal(user.Status)
		gt.Value(t, got.FirstName).Equal(user.FirstName)
		gt.Value(t, got.LastName).Equal(user.LastName)
		gt.Value(t, got.Phone).Equal(user.Phone)
		gt.Value(t, got.GDPRConsent).Equal(user.GDPRConsent)
		gt.Value(t, got.Locale).Equal(user.Locale)
		gt.Value(t, got.FirstLoginCompleted).Equal(user.FirstLoginCompleted)
		gt.B(t, got.CreatedAt.Equal(user.CreatedAt)).True()
		gt.B(t, got.LastLogin.Equal(user.LastLogin)).True()
	})

	t.Run("Insert rejects a duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser(now)
		gt.NoError(t, repo.User().Insert(ctx, user)).Required()

		dup := *user
		dup.Role = types.RoleAdmin
		gt.Error(t, repo.User().Insert(ctx, &dup)).Is(interfaces.ErrAlreadyExists)

		got, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Role).Equal(types.RolePrestataire)
	})

	t.Run("Insert rejects an invalid user", func(t *testing.T) {
		repo := newRepo(t)
		user := newTestUser(now)
		user.Status = "unknown"
		gt.Error(t, repo.User().Insert(context.Background(), user))
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Get(context.Background(), model.UserID(uuid.NewString()))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("List is ordered by creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		second := newTestUser(now.Add(time.Minute))
		first := newTestUser(now)
		gt.NoError(t, repo.User().Insert(ctx, second)).Required()
		gt.NoError(t, repo.User().Insert(ctx, first)).Required()

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, users).Length(2)
		gt.Value(t, users[0].ID).Equal(first.ID)
		gt.Value(t, users[1].ID).Equal(second.ID)
	})

	t.Run("List on empty table", func(t *testing.T) {
		repo := newRepo(t)
		users, err := repo.User().List(context.Background())
		gt.NoError(t, err).Required()
		gt.A(t, users).Length(0)
	})

	t.Run("Update changes only patched fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser(now)
		gt.NoError(t, repo.User().Insert(ctx, user)).Required()

		role := types.RoleAdmin
		updatedAt := now.Add(time.Hour)
		gt.NoError(t, repo.User().Update(ctx, user.ID, &model.UserPatch{
			Role:      &role,
			UpdatedAt: updatedAt,
		})).Required()

		got, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Role).Equal(types.RoleAdmin)
		gt.B(t, got.UpdatedAt.Equal(updatedAt)).True()
		gt.Value(t, got.Email).Equal(user.Email)
		gt.Value(t, got.Status).Equal(types.UserStatusActive)
		gt.Value(t, got.FirstName).Equal(user.FirstName)
	})

	t.Run("Update of unknown ID returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		role := types.RoleAdmin
		err := repo.User().Update(context.Background(), model.UserID(uuid.NewString()), &model.UserPatch{
			Role:      &role,
			UpdatedAt: now,
		})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Delete removes the row and is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser(now)
		gt.NoError(t, repo.User().Insert(ctx, user)).Required()

		gt.NoError(t, repo.User().Delete(ctx, user.ID)).Required()
		_, err := repo.User().Get(ctx, user.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		gt.NoError(t, repo.User().Delete(ctx, user.ID))
	})

	t.Run("returned users are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := newTestUser(now)
		gt.NoError(t, repo.User().Insert(ctx, user)).Required()
		user.Role = types.RoleAdmin

		got, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Role).Equal(types.RolePrestataire)

		got.Role = types.RoleAdmin
		again, err := repo.User().Get(ctx, user.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Role).Equal(types.RolePrestataire)
	})
}

func newFirestoreUserRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresUserRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	gt.NoError(t, err).Required()

	table := fmt.Sprintf("public.users_test_%d", time.Now().UnixNano())
	repo := postgres.NewWithDB(db, postgres.WithUsersTable(table))
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})

	ctx := context.Background()
	gt.NoError(t, repo.EnsureSchema(ctx)).Required()
	t.Cleanup(func() {
		_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
		gt.NoError(t, err)
	})

	return repo
}

func TestMemoryUserRepository(t *testing.T) {
	runUserRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreUserRepository(t *testing.T) {
	runUserRepositoryTest(t, newFirestoreUserRepository)
}

func TestPostgresUserRepository(t *testing.T) {
	runUserRepositoryTest(t, newPostgresUserRepository)
}
