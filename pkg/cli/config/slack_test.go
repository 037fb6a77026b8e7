package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/cli/config"
)

func TestSlackConfigure(t *testing.T) {
	t.Run("not configured returns no notifier", func(t *testing.T) {
		cfg := config.NewSlackForTest("", "")
		gt.Bool(t, cfg.IsConfigured()).False()

		notifier, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).Nil()
	})

	t.Run("bot token without channel", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("bot token and channel", func(t *testing.T) {
		notifier, err := config.NewSlackForTest("xoxb-test", "C0123").Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).NotNil()
	})
}

func TestArchiveConfigure(t *testing.T) {
	ctx := t.Context()

	t.Run("disabled", func(t *testing.T) {
		a, closer, err := config.NewArchiveForTest(config.BackendNone, "").Configure(ctx)
		gt.NoError(t, err).Required()
		defer closer()
		gt.Value(t, a).Nil()
	})

	t.Run("s3 without endpoint", func(t *testing.T) {
		_, closer, err := config.NewArchiveForTest(config.BackendS3, "reports").Configure(ctx)
		gt.Error(t, err)
		closer()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, closer, err := config.NewArchiveForTest("ftp", "reports").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
		closer()
	})
}
