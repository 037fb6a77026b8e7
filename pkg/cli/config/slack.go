package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/service/slack"
)

// Slack holds CLI flags for sync report notifications
type Slack struct {
	botToken  string
	channelID string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token used to post sync reports",
			Category:    "Slack",
			Sources:     cli.EnvVars("GASYWAY_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID receiving sync reports",
			Category:    "Slack",
			Sources:     cli.EnvVars("GASYWAY_SLACK_CHANNEL_ID"),
			Destination: &s.channelID,
		},
	}
}

// IsConfigured returns true if a bot token is set
func (s *Slack) IsConfigured() bool {
	return s.botToken != ""
}

// Configure returns the report notifier, or nil when Slack is not configured
func (s *Slack) Configure(opts ...slack.Option) (interfaces.Notifier, error) {
	if !s.IsConfigured() {
		return nil, nil
	}
	if s.channelID == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "slack-channel-id is required with slack-bot-token",
			goerr.V(FlagKey, "slack-channel-id"))
	}

	svc, err := slack.New(s.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	notifier, err := slack.NewNotifier(svc, s.channelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack notifier")
	}
	return notifier, nil
}
