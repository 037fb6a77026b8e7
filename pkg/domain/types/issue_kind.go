package types

import "fmt"

// IssueKind classifies a discrepancy between the identity directory and the user table
type IssueKind string

const (
	// IssueMissingInUsers: identity exists, no application row with the same id
	IssueMissingInUsers IssueKind = "missing_in_users"
	// IssueRoleMismatch: both exist, application role differs from identity role
	IssueRoleMismatch IssueKind = "role_mismatch"
	// IssueOrphanedUser: application row exists, no identity with the same id
	IssueOrphanedUser IssueKind = "orphaned_user"
)

// AllIssueKinds returns every issue kind in dispatch order
func AllIssueKinds() []IssueKind {
	return []IssueKind{
		IssueMissingInUsers,
		IssueRoleMismatch,
		IssueOrphanedUser,
	}
}

// IsValid checks if the issue kind is valid
func (k IssueKind) IsValid() bool {
	switch k {
	case IssueMissingInUsers,
		IssueRoleMismatch,
		IssueOrphanedUser:
		return true
	default:
		return false
	}
}

func (k IssueKind) String() string {
	return string(k)
}

// ParseIssueKind parses a string into an IssueKind
func ParseIssueKind(s string) (IssueKind, error) {
	kind := IssueKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid issue kind: %s", s)
	}
	return kind, nil
}
