package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/types"
)

// User is a row of the application's users table, mirroring one Identity
type User struct {
	ID                  UserID
	Email               string
	Role                types.Role
	Status              types.UserStatus
	FirstName           string
	LastName            string
	Phone               string
	GDPRConsent         bool
	Locale              types.Locale
	FirstLoginCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastLogin           time.Time
}

// NewUserFromIdentity builds the application row that mirrors identity
func NewUserFromIdentity(identity *Identity, now time.Time) *User {
	profile := identity.Profile()

	lastLogin := now
	if identity.LastSignInAt != nil {
		lastLogin = *identity.LastSignInAt
	}

	return &User{
		ID:                  identity.ID,
		Email:               identity.Email,
		Role:                profile.Role,
		Status:              types.UserStatusActive,
		FirstName:           profile.FirstName,
		LastName:            profile.LastName,
		Phone:               profile.Phone,
		GDPRConsent:         profile.GDPRConsent,
		Locale:              profile.Locale,
		FirstLoginCompleted: profile.FirstLoginCompleted,
		CreatedAt:           identity.CreatedAt,
		UpdatedAt:           now,
		LastLogin:           lastLogin,
	}
}

// Validate checks the fields every stored row must carry
func (u *User) Validate() error {
	if u.ID == "" {
		return goerr.New("user ID is required")
	}
	if !u.Status.IsValid() {
		return goerr.New("invalid user status", goerr.V("user_id", u.ID), goerr.V("status", u.Status))
	}
	if u.Role == "" {
		return goerr.New("user role is required", goerr.V("user_id", u.ID))
	}
	return nil
}

// UserPatch is a partial update of a User. Nil fields are left unchanged; UpdatedAt is
// always written.
type UserPatch struct {
	Email     *string
	Role      *types.Role
	Status    *types.UserStatus
	UpdatedAt time.Time
}

// Apply writes the patch onto u
func (p *UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	u.UpdatedAt = p.UpdatedAt
}
