package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gasyway/gasyway/pkg/domain/types"
)

// SyncRunID identifies one worker or CLI reconciliation run
type SyncRunID string

func NewSyncRunID() SyncRunID {
	return SyncRunID(uuid.Must(uuid.NewV7()).String())
}

func (id SyncRunID) String() string {
	return string(id)
}

// SyncReport records a reconciliation run for archiving and notification
type SyncReport struct {
	RunID      SyncRunID     `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Analysis   *SyncAnalysis `json:"analysis"`
	Fix        *FixAllResult `json:"fix,omitempty"`
}

// Summary renders a one-paragraph human readable digest of the run
func (r *SyncReport) Summary() string {
	var b strings.Builder

	if r.Analysis == nil {
		fmt.Fprintf(&b, "Sync run %s: no analysis", r.RunID)
		return b.String()
	}

	counts := r.Analysis.CountByKind()
	fmt.Fprintf(&b, "Sync run %s: %d identities, %d users, %d existence-synchronized",
		r.RunID, r.Analysis.TotalIdentities, r.Analysis.TotalUsers, r.Analysis.ExistenceSynchronized)
	fmt.Fprintf(&b, "\nIssues: %d missing in users, %d role mismatches, %d orphaned users",
		counts[types.IssueMissingInUsers], counts[types.IssueRoleMismatch], counts[types.IssueOrphanedUser])

	if r.Fix != nil {
		fmt.Fprintf(&b, "\nFixed: %d, failed: %d", r.Fix.Fixed, len(r.Fix.Errors))
		for _, e := range r.Fix.Errors {
			fmt.Fprintf(&b, "\n  - %s", e)
		}
	}

	return b.String()
}
