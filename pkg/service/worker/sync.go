package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/utils/async"
	"github.com/gasyway/gasyway/pkg/utils/errutil"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

// Reconciler is the part of the sync use case the worker drives
type Reconciler interface {
	Analyze(ctx context.Context) (*model.SyncAnalysis, error)
	FixIssues(ctx context.Context, issues []model.SyncIssue) *model.FixAllResult
}

// SyncWorker periodically reconciles the identity directory with the user table.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Two instances running auto-fix at once may race on the same rows; the repairs are
//   idempotent apart from double inserts, which surface as per-issue errors
type SyncWorker struct {
	reconciler Reconciler
	interval   time.Duration
	autoFix    bool
	archive    interfaces.ReportArchive
	notifier   interfaces.Notifier
	notifyMode NotifyMode
	clock      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NotifyMode selects which runs are sent to the notifier
type NotifyMode string

const (
	NotifyAlways   NotifyMode = "always"
	NotifyOnIssues NotifyMode = "issues"
)

type Option func(*SyncWorker)

// WithAutoFix makes every run repair the issues it finds
func WithAutoFix(enabled bool) Option {
	return func(w *SyncWorker) {
		w.autoFix = enabled
	}
}

func WithArchive(archive interfaces.ReportArchive) Option {
	return func(w *SyncWorker) {
		w.archive = archive
	}
}

func WithNotifier(notifier interfaces.Notifier, mode NotifyMode) Option {
	return func(w *SyncWorker) {
		w.notifier = notifier
		w.notifyMode = mode
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *SyncWorker) {
		w.clock = clock
	}
}

func NewSyncWorker(reconciler Reconciler, interval time.Duration, opts ...Option) *SyncWorker {
	w := &SyncWorker{
		reconciler: reconciler,
		interval:   interval,
		notifyMode: NotifyOnIssues,
		clock:      time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the first reconciliation and the periodic loop in a background goroutine
func (w *SyncWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("sync interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Sync worker starting",
		"interval", w.interval.String(),
		"auto_fix", w.autoFix)

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for the current run to finish
func (w *SyncWorker) Stop() {
	logging.Default().Info("Sync worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Sync worker stopped")
}

func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.RunOnce(ctx); err != nil {
		logging.Default().Error("Initial sync run failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logging.Default().Error("Sync run failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Sync worker context cancelled")
			return
		}
	}
}

// RunOnce performs a single reconciliation: analyze, optionally fix, then archive and
// notify. Archive and notification failures are reported but do not fail the run.
func (w *SyncWorker) RunOnce(ctx context.Context) (*model.SyncReport, error) {
	report := &model.SyncReport{
		RunID:     model.NewSyncRunID(),
		StartedAt: w.clock(),
	}
	ctx = logging.With(ctx, logging.From(ctx).With("run_id", report.RunID))

	analysis, err := w.reconciler.Analyze(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to analyze", goerr.V("run_id", report.RunID))
	}
	report.Analysis = analysis

	if w.autoFix && analysis.HasIssues() {
		report.Fix = w.reconciler.FixIssues(ctx, analysis.Issues)
	}
	report.FinishedAt = w.clock()

	logging.From(ctx).Info("Sync run completed",
		"issues", len(analysis.Issues),
		"fixed", fixedCount(report),
		"duration", report.FinishedAt.Sub(report.StartedAt).String())

	if w.archive != nil {
		if err := w.archive.SaveSyncReport(ctx, report); err != nil {
			_ = errutil.Handle(ctx, err, "failed to archive sync report")
		}
	}

	if w.shouldNotify(report) {
		async.Dispatch(ctx, "notify_sync_report", func(ctx context.Context) error {
			return w.notifier.NotifySyncReport(ctx, report)
		})
	}

	return report, nil
}

func (w *SyncWorker) shouldNotify(report *model.SyncReport) bool {
	if w.notifier == nil {
		return false
	}
	if w.notifyMode == NotifyAlways {
		return true
	}
	return report.Analysis.HasIssues()
}

func fixedCount(report *model.SyncReport) int {
	if report.Fix == nil {
		return 0
	}
	return report.Fix.Fixed
}
