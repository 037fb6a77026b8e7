package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/cli/config"
	"github.com/gasyway/gasyway/pkg/repository/firestore"
	"github.com/gasyway/gasyway/pkg/repository/postgres"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

var errNothingToMigrate = goerr.New("select at least one of --schema, --trigger or --firestore-indexes")

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var schema bool
	var trigger bool
	var firestoreIndexes bool
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "schema",
			Usage:       "Create the PostgreSQL users table if it does not exist",
			Destination: &schema,
		},
		&cli.BoolFlag{
			Name:        "trigger",
			Usage:       "Install the PostgreSQL auto-sync trigger and backfill missing users",
			Destination: &trigger,
		},
		&cli.BoolFlag{
			Name:        "firestore-indexes",
			Usage:       "Apply Firestore indexes for the users collection",
			Destination: &firestoreIndexes,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Prepare the application user store",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if !schema && !trigger && !firestoreIndexes {
				return errNothingToMigrate
			}

			logging.Default().Info("Migrate configuration",
				"schema", schema,
				"trigger", trigger,
				"firestoreIndexes", firestoreIndexes,
				"dryRun", dryRun)

			if schema || trigger {
				if err := migratePostgres(ctx, c, &repoCfg, schema, trigger, dryRun); err != nil {
					return err
				}
			}

			if firestoreIndexes {
				if err := migrateFirestore(ctx, &repoCfg, dryRun); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func migratePostgres(ctx context.Context, c *cli.Command, repoCfg *config.Repository, schema, trigger, dryRun bool) error {
	logger := logging.Default()

	if dryRun {
		w := stdout(c)
		if schema {
			fmt.Fprintln(w, postgres.SchemaSQL(repoCfg.UsersTable()))
		}
		if trigger {
			sql, err := postgres.RenderAutoSyncSQL(repoCfg.UsersTable(), repoCfg.IdentityTable())
			if err != nil {
				return err
			}
			fmt.Fprintln(w, sql)
		}
		return nil
	}

	pg, err := repoCfg.ConfigurePostgres(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := pg.Close(); err != nil {
			logger.Error("failed to close postgres", "error", err.Error())
		}
	}()

	if schema {
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		logger.Info("Users table ready", "table", repoCfg.UsersTable())
	}

	if trigger {
		if err := pg.ProvisionAutoSyncTrigger(ctx); err != nil {
			return err
		}
		logger.Info("Auto-sync trigger installed",
			"users_table", repoCfg.UsersTable(),
			"identity_table", repoCfg.IdentityTable())
	}

	return nil
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	if repoCfg.ProjectID() == "" {
		return goerr.Wrap(config.ErrMissingFlag, "firestore-project-id is required for --firestore-indexes",
			goerr.V(config.FlagKey, "firestore-project-id"))
	}

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.UsersCollection,
				Indexes: []fireconf.Index{
					// Users filtered by status in signup order
					{
						Fields: []fireconf.IndexField{
							{Path: "status", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// Users filtered by role in signup order
					{
						Fields: []fireconf.IndexField{
							{Path: "role", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
