package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin role required")
)

// AdminAuthenticator resolves a bearer token to a principal
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
	IsNoAuthn() bool
}

// JWTAuthUseCase verifies access tokens issued by the identity provider. Tokens are
// checked either against the provider's JWKS or against its shared HS256 secret.
type JWTAuthUseCase struct {
	keySet   jwk.Set
	secret   []byte
	audience string
}

var _ AdminAuthenticator = &JWTAuthUseCase{}

type JWTAuthOption func(*JWTAuthUseCase)

func WithAudience(aud string) JWTAuthOption {
	return func(uc *JWTAuthUseCase) {
		uc.audience = aud
	}
}

// NewJWKSAuthUseCase verifies RS256/ES256 tokens with keys fetched from jwksURL. Keys are
// cached and refreshed in the background for the lifetime of ctx.
func NewJWKSAuthUseCase(ctx context.Context, jwksURL string, opts ...JWTAuthOption) (*JWTAuthUseCase, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS", goerr.V("jwks_url", jwksURL))
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("jwks_url", jwksURL))
	}

	uc := &JWTAuthUseCase{keySet: jwk.NewCachedSet(cache, jwksURL)}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// NewSecretAuthUseCase verifies HS256 tokens signed with the provider's JWT secret
func NewSecretAuthUseCase(secret string, opts ...JWTAuthOption) (*JWTAuthUseCase, error) {
	if secret == "" {
		return nil, goerr.New("JWT secret is required")
	}

	uc := &JWTAuthUseCase{secret: []byte(secret)}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

func (uc *JWTAuthUseCase) IsNoAuthn() bool {
	return false
}

// Authenticate verifies token and requires the admin role in its user_metadata claim
func (uc *JWTAuthUseCase) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "no bearer token")
	}

	// Allow 10 seconds of clock skew to handle time synchronization differences
	parseOpts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}
	if uc.keySet != nil {
		parseOpts = append(parseOpts, jwt.WithKeySet(uc.keySet))
	} else {
		parseOpts = append(parseOpts, jwt.WithKey(jwa.HS256, uc.secret))
	}
	if uc.audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(uc.audience))
	}

	parsed, err := jwt.Parse([]byte(token), parseOpts...)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "failed to parse or verify JWT token", goerr.V("reason", err.Error()))
	}

	principal := &model.Principal{
		Sub:  parsed.Subject(),
		Role: roleClaim(parsed),
	}
	if email, ok := parsed.Get("email"); ok {
		principal.Email, _ = email.(string)
	}

	if !principal.IsAdmin() {
		return nil, goerr.Wrap(ErrForbidden, "caller is not an admin",
			goerr.V("sub", principal.Sub),
			goerr.V("role", principal.Role))
	}
	return principal, nil
}

// roleClaim reads the role from user_metadata the same way identity metadata is
// normalized
func roleClaim(token jwt.Token) types.Role {
	raw, ok := token.Get("user_metadata")
	if !ok {
		return model.ExpectedRole(nil)
	}
	md, ok := raw.(map[string]any)
	if !ok {
		return model.ExpectedRole(nil)
	}
	return model.ExpectedRole(md)
}
