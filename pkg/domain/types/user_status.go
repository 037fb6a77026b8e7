package types

import "fmt"

// UserStatus represents the lifecycle status of an application user row
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
	UserStatusDeleted UserStatus = "deleted"
)

// AllUserStatuses returns all valid user statuses
func AllUserStatuses() []UserStatus {
	return []UserStatus{
		UserStatusActive,
		UserStatusBlocked,
		UserStatusDeleted,
	}
}

// IsValid checks if the user status is valid
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive,
		UserStatusBlocked,
		UserStatusDeleted:
		return true
	default:
		return false
	}
}

func (s UserStatus) String() string {
	return string(s)
}

// ParseUserStatus parses a string into a UserStatus
func ParseUserStatus(s string) (UserStatus, error) {
	status := UserStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid user status: %s", s)
	}
	return status, nil
}
