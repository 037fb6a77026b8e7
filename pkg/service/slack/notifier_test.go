package slack_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	goslack "github.com/slack-go/slack"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/service/slack"
)

type mockService struct {
	mu       sync.Mutex
	channels []string
	texts    []string
	blocks   [][]goslack.Block
}

func (m *mockService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, channelID)
	m.texts = append(m.texts, text)
	m.blocks = append(m.blocks, blocks)
	return "1700000000.000100", nil
}

func newReport(fixErrors int) *model.SyncReport {
	report := &model.SyncReport{
		RunID: "run-1",
		Analysis: &model.SyncAnalysis{
			TotalIdentities:       2,
			TotalUsers:            2,
			ExistenceSynchronized: 1,
			Issues: []model.SyncIssue{
				{Kind: "missing_in_users", UserID: "u2", Email: "b@x.com"},
			},
		},
	}
	if fixErrors >= 0 {
		report.Fix = &model.FixAllResult{Fixed: 1}
		for i := range fixErrors {
			report.Fix.Errors = append(report.Fix.Errors, fmt.Sprintf("u%d@x.com: insert failed", i))
		}
	}
	return report
}

func TestNotifier_NotifySyncReport(t *testing.T) {
	svc := &mockService{}
	n, err := slack.NewNotifier(svc, "C123")
	gt.NoError(t, err).Required()

	report := newReport(1)
	gt.NoError(t, n.NotifySyncReport(context.Background(), report)).Required()

	gt.Value(t, svc.channels).Equal([]string{"C123"})
	gt.Value(t, svc.texts[0]).Equal(report.Summary())
	gt.A(t, svc.blocks[0]).Length(4)
}

func TestNewNotifier_RequiresChannel(t *testing.T) {
	_, err := slack.NewNotifier(&mockService{}, "")
	gt.Error(t, err)
}

func TestBuildReportBlocks(t *testing.T) {
	t.Run("without fix section", func(t *testing.T) {
		blocks := slack.BuildReportBlocks(newReport(-1))
		gt.A(t, blocks).Length(3)

		header, ok := blocks[0].(*goslack.HeaderBlock)
		gt.B(t, ok).True()
		gt.S(t, header.Text.Text).Contains("issues found")
	})

	t.Run("long error lists are truncated", func(t *testing.T) {
		blocks := slack.BuildReportBlocks(newReport(15))
		section, ok := blocks[2].(*goslack.SectionBlock)
		gt.B(t, ok).True()
		gt.S(t, section.Text.Text).Contains("*Failed:* 15")
		gt.S(t, section.Text.Text).Contains("and 5 more")
		gt.B(t, strings.Contains(section.Text.Text, "u10@x.com")).False()
	})

	t.Run("clean run", func(t *testing.T) {
		report := newReport(-1)
		report.Analysis.Issues = nil
		blocks := slack.BuildReportBlocks(report)
		header := blocks[0].(*goslack.HeaderBlock)
		gt.S(t, header.Text.Text).Contains("no issues")
	})
}

func TestClient_PostMessage(t *testing.T) {
	channels := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/chat.postMessage")
		gt.NoError(t, r.ParseForm())
		channels <- r.FormValue("channel")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	t.Cleanup(srv.Close)

	svc, err := slack.New("xoxb-test", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	ts, err := svc.PostMessage(context.Background(), "C123", slack.BuildReportBlocks(newReport(0)), "fallback")
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1700000000.000100")
	gt.Value(t, <-channels).Equal("C123")
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := slack.New("")
	gt.Error(t, err)
}
