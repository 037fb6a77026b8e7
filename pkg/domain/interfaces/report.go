package interfaces

import (
	"context"

	"github.com/gasyway/gasyway/pkg/domain/model"
)

// Notifier delivers a reconciliation report to operators
type Notifier interface {
	NotifySyncReport(ctx context.Context, report *model.SyncReport) error
}

// ReportArchive keeps reconciliation reports for later audit
type ReportArchive interface {
	SaveSyncReport(ctx context.Context, report *model.SyncReport) error
}
