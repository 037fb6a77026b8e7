package model

import (
	"maps"
	"time"

	"github.com/gasyway/gasyway/pkg/domain/types"
)

// SyncIssue is one discrepancy found by an analysis pass. Which fields are set depends
// on Kind:
//   - missing_in_users: IdentityMetadata
//   - role_mismatch: IdentityMetadata, ExpectedRole, CurrentRole
//   - orphaned_user: CurrentRole, Status
type SyncIssue struct {
	Kind             types.IssueKind  `json:"kind"`
	UserID           UserID           `json:"user_id"`
	Email            string           `json:"email"`
	IdentityMetadata map[string]any   `json:"identity_metadata,omitempty"`
	ExpectedRole     types.Role       `json:"expected_role,omitempty"`
	CurrentRole      types.Role       `json:"current_role,omitempty"`
	Status           types.UserStatus `json:"status,omitempty"`
}

func NewMissingInUsersIssue(identity *Identity) SyncIssue {
	return SyncIssue{
		Kind:             types.IssueMissingInUsers,
		UserID:           identity.ID,
		Email:            identity.Email,
		IdentityMetadata: maps.Clone(identity.Metadata),
	}
}

func NewRoleMismatchIssue(identity *Identity, user *User) SyncIssue {
	return SyncIssue{
		Kind:             types.IssueRoleMismatch,
		UserID:           identity.ID,
		Email:            identity.Email,
		IdentityMetadata: maps.Clone(identity.Metadata),
		ExpectedRole:     ExpectedRole(identity.Metadata),
		CurrentRole:      user.Role,
	}
}

func NewOrphanedUserIssue(user *User) SyncIssue {
	return SyncIssue{
		Kind:        types.IssueOrphanedUser,
		UserID:      user.ID,
		Email:       user.Email,
		CurrentRole: user.Role,
		Status:      user.Status,
	}
}

// SyncAnalysis is the snapshot produced by one analysis pass. It is never persisted by
// the reconciler itself.
type SyncAnalysis struct {
	TotalIdentities int `json:"total_identities"`
	TotalUsers      int `json:"total_users"`
	// ExistenceSynchronized counts identities that have an application row, whether or not
	// the roles agree: TotalIdentities minus missing_in_users issues.
	ExistenceSynchronized int         `json:"existence_synchronized"`
	Issues                []SyncIssue `json:"issues"`
	AnalyzedAt            time.Time   `json:"analyzed_at"`
}

// HasIssues reports whether the analysis found any discrepancy
func (a *SyncAnalysis) HasIssues() bool {
	return len(a.Issues) > 0
}

// CountByKind returns the number of issues per kind. Every kind is present in the result.
func (a *SyncAnalysis) CountByKind() map[types.IssueKind]int {
	counts := make(map[types.IssueKind]int, len(types.AllIssueKinds()))
	for _, kind := range types.AllIssueKinds() {
		counts[kind] = 0
	}
	for _, issue := range a.Issues {
		counts[issue.Kind]++
	}
	return counts
}

// FixResult is the transport shape of a single repair
type FixResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewFixResult converts the outcome of a repair into a FixResult
func NewFixResult(err error) FixResult {
	if err != nil {
		return FixResult{Success: false, Error: err.Error()}
	}
	return FixResult{Success: true}
}

// FixAllResult aggregates a batch repair. Errors holds one "<email>: <reason>" entry per
// failed issue.
type FixAllResult struct {
	Success bool     `json:"success"`
	Fixed   int      `json:"fixed"`
	Errors  []string `json:"errors"`
}
