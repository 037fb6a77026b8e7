package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/repository/firestore"
	"github.com/gasyway/gasyway/pkg/repository/memory"
	"github.com/gasyway/gasyway/pkg/repository/postgres"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Repository holds CLI flags for the application user store
type Repository struct {
	backend       string
	postgresDSN   string
	usersTable    string
	identityTable string
	projectID     string
	databaseID    string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (postgres, firestore or memory)",
			Value:       BackendPostgres,
			Category:    "Repository",
			Sources:     cli.EnvVars("GASYWAY_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("GASYWAY_POSTGRES_DSN", "DATABASE_URL"),
			Destination: &r.postgresDSN,
		},
		&cli.StringFlag{
			Name:        "postgres-users-table",
			Usage:       "Qualified name of the application users table",
			Value:       postgres.DefaultUsersTable,
			Category:    "Repository",
			Sources:     cli.EnvVars("GASYWAY_POSTGRES_USERS_TABLE"),
			Destination: &r.usersTable,
		},
		&cli.StringFlag{
			Name:        "postgres-identity-table",
			Usage:       "Qualified name of the identity provider's user table, used by the auto-sync trigger",
			Value:       postgres.DefaultIdentityTable,
			Category:    "Repository",
			Sources:     cli.EnvVars("GASYWAY_POSTGRES_IDENTITY_TABLE"),
			Destination: &r.identityTable,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("GASYWAY_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("GASYWAY_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// UsersTable returns the qualified application users table name
func (r *Repository) UsersTable() string {
	return r.usersTable
}

// IdentityTable returns the qualified identity provider table name
func (r *Repository) IdentityTable() string {
	return r.identityTable
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// ConfigurePostgres opens the PostgreSQL store regardless of the selected backend.
// migrate uses it to bootstrap the schema and trigger.
func (r *Repository) ConfigurePostgres(ctx context.Context) (*postgres.Postgres, error) {
	if r.postgresDSN == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "postgres-dsn is required when using postgres backend",
			goerr.V(FlagKey, "postgres-dsn"))
	}

	repo, err := postgres.New(ctx, r.postgresDSN,
		postgres.WithUsersTable(r.usersTable),
		postgres.WithIdentityTable(r.identityTable),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize postgres repository")
	}
	return repo, nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendPostgres:
		repo, err := r.ConfigurePostgres(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Using PostgreSQL repository",
			"users_table", r.usersTable,
			"identity_table", r.identityTable,
		)
		return repo, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
