package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

// maxListedErrors caps the fix errors rendered in one message
const maxListedErrors = 10

// Notifier posts reconciliation reports to a Slack channel
type Notifier struct {
	svc       Service
	channelID string
}

var _ interfaces.Notifier = &Notifier{}

func NewNotifier(svc Service, channelID string) (*Notifier, error) {
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}
	return &Notifier{svc: svc, channelID: channelID}, nil
}

func (n *Notifier) NotifySyncReport(ctx context.Context, report *model.SyncReport) error {
	if _, err := n.svc.PostMessage(ctx, n.channelID, buildReportBlocks(report), report.Summary()); err != nil {
		return goerr.Wrap(err, "failed to notify sync report", goerr.V("run_id", report.RunID))
	}
	return nil
}

func buildReportBlocks(report *model.SyncReport) []slack.Block {
	title := ":white_check_mark: Identity sync: no issues"
	if report.Analysis != nil && report.Analysis.HasIssues() {
		title = ":warning: Identity sync: issues found"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
	}

	if report.Analysis != nil {
		a := report.Analysis
		counts := a.CountByKind()
		fields := []*slack.TextBlockObject{
			mrkdwn(fmt.Sprintf("*Identities*\n%d", a.TotalIdentities)),
			mrkdwn(fmt.Sprintf("*Users*\n%d", a.TotalUsers)),
			mrkdwn(fmt.Sprintf("*Missing in users*\n%d", counts[types.IssueMissingInUsers])),
			mrkdwn(fmt.Sprintf("*Role mismatches*\n%d", counts[types.IssueRoleMismatch])),
			mrkdwn(fmt.Sprintf("*Orphaned users*\n%d", counts[types.IssueOrphanedUser])),
			mrkdwn(fmt.Sprintf("*Existence-synchronized*\n%d", a.ExistenceSynchronized)),
		}
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}

	if report.Fix != nil {
		text := fmt.Sprintf("*Fixed:* %d  |  *Failed:* %d", report.Fix.Fixed, len(report.Fix.Errors))
		if len(report.Fix.Errors) > 0 {
			listed := report.Fix.Errors
			if len(listed) > maxListedErrors {
				listed = listed[:maxListedErrors]
			}
			text += "\n• " + strings.Join(listed, "\n• ")
			if rest := len(report.Fix.Errors) - len(listed); rest > 0 {
				text += fmt.Sprintf("\n…and %d more", rest)
			}
		}
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(text), nil, nil))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		mrkdwn(fmt.Sprintf("Run `%s`", report.RunID)),
	))

	return blocks
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}
