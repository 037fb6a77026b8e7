package archive

import (
	"context"
	"encoding/json"
	"path"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

// ObjectStore writes a single object to a bucket
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Archive stores sync reports as JSON objects under prefix/yyyy/mm/dd/<run_id>.json
type Archive struct {
	store  ObjectStore
	prefix string
}

var _ interfaces.ReportArchive = &Archive{}

func New(store ObjectStore, prefix string) *Archive {
	return &Archive{store: store, prefix: prefix}
}

// ObjectKey returns the key report is stored under
func (a *Archive) ObjectKey(report *model.SyncReport) string {
	day := report.StartedAt.UTC().Format("2006/01/02")
	return path.Join(a.prefix, day, report.RunID.String()+".json")
}

func (a *Archive) SaveSyncReport(ctx context.Context, report *model.SyncReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal sync report", goerr.V("run_id", report.RunID))
	}

	key := a.ObjectKey(report)
	if err := a.store.PutObject(ctx, key, data, "application/json"); err != nil {
		return goerr.Wrap(err, "failed to store sync report", goerr.V("key", key))
	}

	logging.From(ctx).Debug("sync report archived", "key", key, "size", len(data))
	return nil
}
