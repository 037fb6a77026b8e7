package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"

	httpctrl "github.com/gasyway/gasyway/pkg/controller/http"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
	"github.com/gasyway/gasyway/pkg/repository/memory"
	"github.com/gasyway/gasyway/pkg/service/identity"
	"github.com/gasyway/gasyway/pkg/usecase"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func newServer(t *testing.T, auth usecase.AdminAuthenticator) (*httpctrl.Server, *memory.Memory) {
	t.Helper()

	repo := memory.New()
	now := time.Now()
	for _, u := range []*model.User{
		{ID: "u1", Email: "a@x.com", Role: types.RoleVoyageur, Status: types.UserStatusActive, CreatedAt: now, UpdatedAt: now, LastLogin: now},
		{ID: "u3", Email: "c@x.com", Role: types.RoleVoyageur, Status: types.UserStatusActive, CreatedAt: now, UpdatedAt: now, LastLogin: now},
	} {
		gt.NoError(t, repo.User().Insert(context.Background(), u)).Required()
	}

	dir := identity.NewMemory(
		&model.Identity{ID: "u1", Email: "a@x.com", Metadata: map[string]any{"role": "admin"}, CreatedAt: now},
		&model.Identity{ID: "u2", Email: "b@x.com", Metadata: map[string]any{}, CreatedAt: now},
	)

	srv, err := httpctrl.New(usecase.New(repo, dir).Sync, httpctrl.WithAuth(auth))
	gt.NoError(t, err).Required()
	return srv, repo
}

func do(t *testing.T, srv http.Handler, method, path, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	}
	return rec, body
}

func signToken(t *testing.T, role string) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Subject("admin-1").
		Expiration(time.Now().Add(time.Hour)).
		Claim("user_metadata", map[string]any{"role": role}).
		Build()
	gt.NoError(t, err).Required()

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	gt.NoError(t, err).Required()
	return string(signed)
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, usecase.NewNoAuthnUseCase("dev", "dev@x.com"))
	rec, body := do(t, srv, http.MethodGet, "/health", "")
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, body["status"]).Equal(any("ok"))
}

func TestSyncEndpoints(t *testing.T) {
	srv, repo := newServer(t, usecase.NewNoAuthnUseCase("dev", "dev@x.com"))
	ctx := context.Background()

	t.Run("analysis", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodGet, "/api/admin/sync/analysis", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["total_identities"]).Equal(any(float64(2)))
		gt.Value(t, body["existence_synchronized"]).Equal(any(float64(1)))
		gt.A(t, body["issues"].([]any)).Length(3)
	})

	t.Run("fix role", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodPost, "/api/admin/sync/users/u1/fix-role", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["success"]).Equal(any(true))

		u, err := repo.User().Get(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Value(t, u.Role).Equal(types.RoleAdmin)
	})

	t.Run("fix missing then duplicate", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodPost, "/api/admin/sync/users/u2/fix-missing", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["success"]).Equal(any(true))

		rec, body = do(t, srv, http.MethodPost, "/api/admin/sync/users/u2/fix-missing", "")
		gt.Number(t, rec.Code).Equal(http.StatusInternalServerError)
		gt.Value(t, body["success"]).Equal(any(false))
		gt.S(t, body["error"].(string)).Contains("insert")
	})

	t.Run("fix missing for unknown identity", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodPost, "/api/admin/sync/users/ghost/fix-missing", "")
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
		gt.Value(t, body["success"]).Equal(any(false))
	})

	t.Run("remove orphan twice", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodDelete, "/api/admin/sync/users/u3", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		rec, body := do(t, srv, http.MethodDelete, "/api/admin/sync/users/u3", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["success"]).Equal(any(true))
	})

	t.Run("fix all on a clean state", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodPost, "/api/admin/sync/fix-all", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["success"]).Equal(any(true))
		gt.Value(t, body["fixed"]).Equal(any(float64(0)))
		gt.A(t, body["errors"].([]any)).Length(0)
	})

	t.Run("trigger unsupported on memory backend", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodPost, "/api/admin/sync/trigger", "")
		gt.Number(t, rec.Code).Equal(http.StatusNotImplemented)
		gt.Value(t, body["success"]).Equal(any(false))
	})
}

func TestFixAll(t *testing.T) {
	srv, _ := newServer(t, usecase.NewNoAuthnUseCase("dev", "dev@x.com"))

	rec, body := do(t, srv, http.MethodPost, "/api/admin/sync/fix-all", "")
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, body["fixed"]).Equal(any(float64(3)))

	_, body = do(t, srv, http.MethodGet, "/api/admin/sync/analysis", "")
	gt.A(t, body["issues"].([]any)).Length(0)
}

func TestAdminAuth(t *testing.T) {
	auth, err := usecase.NewSecretAuthUseCase(testSecret)
	gt.NoError(t, err).Required()
	srv, _ := newServer(t, auth)

	t.Run("missing token", func(t *testing.T) {
		rec, body := do(t, srv, http.MethodGet, "/api/admin/sync/analysis", "")
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, body["success"]).Equal(any(false))
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodPost, "/api/admin/sync/fix-all", "garbage")
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("non-admin token", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodGet, "/api/admin/sync/analysis", signToken(t, "voyageur"))
		gt.Number(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("admin token", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodGet, "/api/admin/sync/analysis", signToken(t, "admin"))
		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("health needs no token", func(t *testing.T) {
		rec, _ := do(t, srv, http.MethodGet, "/health", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})
}

type failingSync struct {
	httpctrl.SyncUseCase
}

func (failingSync) Analyze(ctx context.Context) (*model.SyncAnalysis, error) {
	return nil, &usecase.SyncError{Kind: usecase.KindFetch, Err: errors.New("upstream down")}
}

func TestAnalysisFetchFailure(t *testing.T) {
	srv, err := httpctrl.New(failingSync{}, httpctrl.WithAuth(usecase.NewNoAuthnUseCase("dev", "")))
	gt.NoError(t, err).Required()

	rec, body := do(t, srv, http.MethodGet, "/api/admin/sync/analysis", "")
	gt.Number(t, rec.Code).Equal(http.StatusBadGateway)
	gt.S(t, body["error"].(string)).Contains("upstream down")
}

func TestNew_RequiresAuth(t *testing.T) {
	_, err := httpctrl.New(usecase.New(memory.New(), identity.NewMemory()).Sync)
	gt.Error(t, err)
}
