package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/service/archive"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

const (
	BackendNone = "none"
	BackendGCS  = "gcs"
	BackendS3   = "s3"
)

// Archive holds CLI flags for the sync report archive
type Archive struct {
	backend     string
	bucket      string
	prefix      string
	s3Endpoint  string
	s3AccessKey string
	s3SecretKey string
	s3Region    string
	s3Insecure  bool
}

// Flags returns CLI flags for archive configuration
func (a *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-backend",
			Usage:       "Sync report archive backend (none, gcs or s3)",
			Value:       BackendNone,
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_BACKEND"),
			Destination: &a.backend,
		},
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Bucket receiving sync reports",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_BUCKET"),
			Destination: &a.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object key prefix for sync reports",
			Value:       "sync-reports",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_PREFIX"),
			Destination: &a.prefix,
		},
		&cli.StringFlag{
			Name:        "archive-s3-endpoint",
			Usage:       "S3-compatible endpoint host (e.g. minio.local:9000)",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_S3_ENDPOINT"),
			Destination: &a.s3Endpoint,
		},
		&cli.StringFlag{
			Name:        "archive-s3-access-key",
			Usage:       "S3 access key",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_S3_ACCESS_KEY"),
			Destination: &a.s3AccessKey,
		},
		&cli.StringFlag{
			Name:        "archive-s3-secret-key",
			Usage:       "S3 secret key",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_S3_SECRET_KEY"),
			Destination: &a.s3SecretKey,
		},
		&cli.StringFlag{
			Name:        "archive-s3-region",
			Usage:       "S3 region",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_S3_REGION"),
			Destination: &a.s3Region,
		},
		&cli.BoolFlag{
			Name:        "archive-s3-insecure",
			Usage:       "Connect to the S3 endpoint over plain HTTP",
			Category:    "Archive",
			Sources:     cli.EnvVars("GASYWAY_ARCHIVE_S3_INSECURE"),
			Destination: &a.s3Insecure,
		},
	}
}

// Configure returns the report archive, or nil when archiving is disabled.
// The returned closer is never nil.
func (a *Archive) Configure(ctx context.Context) (interfaces.ReportArchive, func(), error) {
	noop := func() {}

	switch a.backend {
	case "", BackendNone:
		return nil, noop, nil

	case BackendGCS:
		store, err := archive.NewGCS(ctx, a.bucket)
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to initialize GCS archive")
		}
		logging.Default().Info("Archiving sync reports to GCS", "bucket", a.bucket, "prefix", a.prefix)
		return archive.New(store, a.prefix), func() {
			if err := store.Close(); err != nil {
				logging.Default().Warn("failed to close storage client", "error", err)
			}
		}, nil

	case BackendS3:
		store, err := archive.NewS3(archive.S3Config{
			Endpoint:  a.s3Endpoint,
			AccessKey: a.s3AccessKey,
			SecretKey: a.s3SecretKey,
			Bucket:    a.bucket,
			Region:    a.s3Region,
			Secure:    !a.s3Insecure,
		})
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to initialize S3 archive")
		}
		logging.Default().Info("Archiving sync reports to S3", "endpoint", a.s3Endpoint, "bucket", a.bucket)
		return archive.New(store, a.prefix), noop, nil

	default:
		return nil, noop, goerr.Wrap(ErrInvalidBackend, "invalid archive backend", goerr.V(BackendKey, a.backend))
	}
}
