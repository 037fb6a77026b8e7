package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/cli/config"
	httpctrl "github.com/gasyway/gasyway/pkg/controller/http"
	"github.com/gasyway/gasyway/pkg/service/worker"
	"github.com/gasyway/gasyway/pkg/usecase"
	"github.com/gasyway/gasyway/pkg/utils/async"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.App
	var repoCfg config.Repository
	var identityCfg config.Identity
	var authCfg config.Auth
	var slackCfg config.Slack
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("GASYWAY_ADDR"),
			Destination: &addr,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, identityCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the admin HTTP API and the periodic reconciliation worker",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appConfig, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			directory, err := identityCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize identity directory")
			}

			authUC, err := authCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authUC.IsNoAuthn() {
				logging.Default().Warn("Running in no-auth mode (development only)")
			}

			uc := usecase.New(repo, directory)

			// The worker is optional; without an interval the HTTP API is the only trigger
			var syncWorker *worker.SyncWorker
			if interval := appConfig.Sync.IntervalDuration(); interval > 0 {
				workerOpts := []worker.Option{
					worker.WithAutoFix(appConfig.Sync.AutoFix),
				}

				notifier, err := slackCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to configure slack notifier")
				}
				if notifier != nil {
					workerOpts = append(workerOpts, worker.WithNotifier(notifier, appConfig.Sync.NotifyMode()))
				}

				archive, closeArchive, err := archiveCfg.Configure(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to configure report archive")
				}
				defer closeArchive()
				if archive != nil {
					workerOpts = append(workerOpts, worker.WithArchive(archive))
				}

				syncWorker = worker.NewSyncWorker(uc.Sync, interval, workerOpts...)
				if err := syncWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start sync worker")
				}
			} else {
				logging.Default().Info("Sync worker disabled, set [sync] interval to enable it")
			}

			httpHandler, err := httpctrl.New(uc.Sync, httpctrl.WithAuth(authUC))
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if syncWorker != nil {
					syncWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the worker first so no run starts during shutdown
				if syncWorker != nil {
					syncWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := async.Wait(shutdownCtx); err != nil {
					logging.Default().Warn("pending notifications were dropped", "error", err)
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
