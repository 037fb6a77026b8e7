package model

import (
	"context"

	"github.com/gasyway/gasyway/pkg/domain/types"
)

// Principal is the authenticated caller of the admin API
type Principal struct {
	Sub   string
	Email string
	Role  types.Role
}

// IsAdmin reports whether the principal may run reconciliation
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == types.RoleAdmin
}

type ctxPrincipalKey struct{}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ContextWithPrincipal, or nil
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxPrincipalKey{}).(*Principal)
	return p
}
