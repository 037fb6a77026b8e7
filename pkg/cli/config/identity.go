package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/service/identity"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

const (
	BackendGoTrue = "gotrue"
)

// Identity holds CLI flags for the identity provider's admin API
type Identity struct {
	backend    string
	url        string
	serviceKey string
	perPage    int
	seedFile   string
}

// Flags returns CLI flags for identity directory configuration
func (i *Identity) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "identity-backend",
			Usage:       "Identity directory backend (gotrue or memory)",
			Value:       BackendGoTrue,
			Category:    "Identity Provider",
			Sources:     cli.EnvVars("GASYWAY_IDENTITY_BACKEND"),
			Destination: &i.backend,
		},
		&cli.StringFlag{
			Name:        "identity-url",
			Usage:       "Base URL of the identity provider project (e.g. https://xyz.supabase.co)",
			Category:    "Identity Provider",
			Sources:     cli.EnvVars("GASYWAY_IDENTITY_URL", "SUPABASE_URL"),
			Destination: &i.url,
		},
		&cli.StringFlag{
			Name:        "identity-service-key",
			Usage:       "Service role key for the admin API",
			Category:    "Identity Provider",
			Sources:     cli.EnvVars("GASYWAY_IDENTITY_SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY"),
			Destination: &i.serviceKey,
		},
		&cli.IntFlag{
			Name:        "identity-page-size",
			Usage:       "Accounts fetched per admin API page",
			Value:       identity.DefaultPerPage,
			Category:    "Identity Provider",
			Sources:     cli.EnvVars("GASYWAY_IDENTITY_PAGE_SIZE"),
			Destination: &i.perPage,
		},
		&cli.StringFlag{
			Name:        "identity-seed",
			Usage:       "JSON file of identities loaded into the memory backend",
			Category:    "Identity Provider",
			Sources:     cli.EnvVars("GASYWAY_IDENTITY_SEED"),
			Destination: &i.seedFile,
		},
	}
}

type seedIdentity struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Metadata     map[string]any `json:"user_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	LastSignInAt *time.Time     `json:"last_sign_in_at"`
}

// Configure returns the identity directory for the configured backend
func (i *Identity) Configure() (interfaces.IdentityDirectory, error) {
	switch i.backend {
	case BackendGoTrue:
		dir, err := identity.NewGoTrue(i.url, i.serviceKey, identity.WithPerPage(i.perPage))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize identity provider client")
		}
		logging.Default().Info("Using GoTrue identity directory", "url", i.url)
		return dir, nil

	case BackendMemory:
		dir := identity.NewMemory()
		if i.seedFile != "" {
			seeds, err := loadSeed(i.seedFile)
			if err != nil {
				return nil, err
			}
			for _, s := range seeds {
				dir.Put(&model.Identity{
					ID:           model.UserID(s.ID),
					Email:        s.Email,
					Metadata:     s.Metadata,
					CreatedAt:    s.CreatedAt,
					LastSignInAt: s.LastSignInAt,
				})
			}
		}
		logging.Default().Info("Using in-memory identity directory (development mode)", "seed", i.seedFile)
		return dir, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid identity backend", goerr.V(BackendKey, i.backend))
	}
}

func loadSeed(path string) ([]seedIdentity, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read identity seed", goerr.V("path", path))
	}

	var seeds []seedIdentity
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, goerr.Wrap(err, "failed to parse identity seed", goerr.V("path", path))
	}
	return seeds, nil
}
