package model

import (
	"maps"
	"time"
)

// UserID identifies an account. An identity and its application row share the same value.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// Identity is one account of the identity provider's directory. It is read-only to
// reconciliation.
type Identity struct {
	ID           UserID
	Email        string
	Metadata     map[string]any
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// Profile returns the identity metadata with defaults applied
func (i *Identity) Profile() Profile {
	return NormalizeMetadata(i.Metadata)
}

// Clone returns a copy that shares no metadata map with i
func (i *Identity) Clone() *Identity {
	c := *i
	c.Metadata = maps.Clone(i.Metadata)
	if i.LastSignInAt != nil {
		t := *i.LastSignInAt
		c.LastSignInAt = &t
	}
	return &c
}
