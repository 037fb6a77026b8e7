package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/cli/config"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/service/worker"
	"github.com/gasyway/gasyway/pkg/usecase"
	"github.com/gasyway/gasyway/pkg/utils/async"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

var errFixTarget = goerr.New("exactly one of --all, --missing, --role or --orphan is required")

func cmdSync() *cli.Command {
	var repoCfg config.Repository
	var identityCfg config.Identity

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, identityCfg.Flags()...)

	// setup opens both collaborators; the returned closer releases the repository
	setup := func(ctx context.Context) (*usecase.UseCases, func(), error) {
		repo, err := repoCfg.Configure(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize repository")
		}
		closer := func() {
			if err := repo.Close(); err != nil {
				logging.Default().Error("failed to close repository", "error", err.Error())
			}
		}

		directory, err := identityCfg.Configure()
		if err != nil {
			closer()
			return nil, nil, goerr.Wrap(err, "failed to initialize identity directory")
		}

		return usecase.New(repo, directory), closer, nil
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Inspect and repair drift between identities and application users",
		Flags: flags,
		Commands: []*cli.Command{
			cmdSyncAnalyze(setup),
			cmdSyncFix(setup),
			cmdSyncRun(setup),
		},
	}
}

type setupFunc func(ctx context.Context) (*usecase.UseCases, func(), error)

func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}

func cmdSyncAnalyze(setup setupFunc) *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "analyze",
		Usage: "Report every discrepancy without changing anything",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the analysis as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			analysis, err := uc.Sync.Analyze(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to analyze")
			}

			if asJSON {
				return writeJSON(stdout(c), analysis)
			}
			renderAnalysis(stdout(c), analysis)
			return nil
		},
	}
}

func cmdSyncFix(setup setupFunc) *cli.Command {
	var all bool
	var missingID, roleID, orphanID string
	var asJSON bool

	return &cli.Command{
		Name:  "fix",
		Usage: "Repair one issue or every issue found by a fresh analysis",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "Analyze and repair every issue",
				Destination: &all,
			},
			&cli.StringFlag{
				Name:        "missing",
				Usage:       "Create the application row for this identity ID",
				Destination: &missingID,
			},
			&cli.StringFlag{
				Name:        "role",
				Usage:       "Copy the identity role onto the application row with this ID",
				Destination: &roleID,
			},
			&cli.StringFlag{
				Name:        "orphan",
				Usage:       "Delete the application row with this ID",
				Destination: &orphanID,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the result as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			targets := 0
			for _, set := range []bool{all, missingID != "", roleID != "", orphanID != ""} {
				if set {
					targets++
				}
			}
			if targets != 1 {
				return errFixTarget
			}

			uc, closer, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			w := stdout(c)

			if all {
				result, err := uc.Sync.FixAllIssues(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to fix issues")
				}
				if asJSON {
					return writeJSON(w, result)
				}
				renderFixAll(w, result)
				return nil
			}

			var action string
			var id model.UserID
			var fixErr error
			switch {
			case missingID != "":
				action, id = "create", model.UserID(missingID)
				fixErr = uc.Sync.FixMissingUser(ctx, id)
			case roleID != "":
				action, id = "fix role", model.UserID(roleID)
				fixErr = uc.Sync.FixRoleMismatch(ctx, id)
			default:
				action, id = "remove", model.UserID(orphanID)
				fixErr = uc.Sync.RemoveOrphanedUser(ctx, id)
			}

			result := model.NewFixResult(fixErr)
			if asJSON {
				if err := writeJSON(w, result); err != nil {
					return err
				}
			} else {
				renderFixResult(w, action, id, result)
			}
			return fixErr
		},
	}
}

func cmdSyncRun(setup setupFunc) *cli.Command {
	var fix bool
	var notifyAlways bool
	var slackCfg config.Slack
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "fix",
			Usage:       "Repair the issues found",
			Destination: &fix,
		},
		&cli.BoolFlag{
			Name:        "notify-always",
			Usage:       "Notify even when no issue was found",
			Destination: &notifyAlways,
		},
	}
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Perform one worker run: analyze, optionally fix, archive and notify",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closer()

			opts := []worker.Option{worker.WithAutoFix(fix)}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifier")
			}
			if notifier != nil {
				mode := worker.NotifyOnIssues
				if notifyAlways {
					mode = worker.NotifyAlways
				}
				opts = append(opts, worker.WithNotifier(notifier, mode))
			}

			archive, closeArchive, err := archiveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure report archive")
			}
			defer closeArchive()
			if archive != nil {
				opts = append(opts, worker.WithArchive(archive))
			}

			// interval is unused by RunOnce
			report, err := worker.NewSyncWorker(uc.Sync, 0, opts...).RunOnce(ctx)
			if err != nil {
				return err
			}
			if err := async.Wait(ctx); err != nil {
				logging.Default().Warn("notification did not complete", "error", err)
			}

			return writeJSON(stdout(c), report)
		},
	}
}
