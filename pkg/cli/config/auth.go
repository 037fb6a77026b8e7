package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/usecase"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

// Auth holds CLI flags for admin API authentication
type Auth struct {
	jwksURL   string
	jwtSecret string
	audience  string
	noAuth    string
}

// Flags returns CLI flags for authentication configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "JWKS endpoint used to verify admin access tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("GASYWAY_AUTH_JWKS_URL"),
			Destination: &a.jwksURL,
		},
		&cli.StringFlag{
			Name:        "auth-jwt-secret",
			Usage:       "HS256 secret used to verify admin access tokens (legacy projects)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("GASYWAY_AUTH_JWT_SECRET", "SUPABASE_JWT_SECRET"),
			Destination: &a.jwtSecret,
		},
		&cli.StringFlag{
			Name:        "auth-audience",
			Usage:       "Required token audience",
			Value:       "authenticated",
			Category:    "Authentication",
			Sources:     cli.EnvVars("GASYWAY_AUTH_AUDIENCE"),
			Destination: &a.audience,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given admin email (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("GASYWAY_NO_AUTH"),
			Destination: &a.noAuth,
		},
	}
}

// IsNoAuthMode returns true when authentication is disabled
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuth != ""
}

// Configure returns the admin authenticator. no-auth takes precedence, then JWKS, then
// the shared secret.
func (a *Auth) Configure(ctx context.Context) (usecase.AdminAuthenticator, error) {
	var opts []usecase.JWTAuthOption
	if a.audience != "" {
		opts = append(opts, usecase.WithAudience(a.audience))
	}

	switch {
	case a.noAuth != "":
		if a.jwksURL != "" || a.jwtSecret != "" {
			logging.Default().Warn("no-auth is set, token verification settings are ignored")
		}
		return usecase.NewNoAuthnUseCase("no-auth", a.noAuth), nil

	case a.jwksURL != "":
		uc, err := usecase.NewJWKSAuthUseCase(ctx, a.jwksURL, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure JWKS authentication")
		}
		return uc, nil

	case a.jwtSecret != "":
		uc, err := usecase.NewSecretAuthUseCase(a.jwtSecret, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure secret authentication")
		}
		return uc, nil

	default:
		return nil, goerr.Wrap(ErrMissingFlag, "one of auth-jwks-url, auth-jwt-secret or no-auth is required",
			goerr.V(FlagKey, "auth-jwks-url"))
	}
}
