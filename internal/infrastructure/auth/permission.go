package auth

import (
	"context"

	"github.com/erp/barcode/internal/domain/barcode"
)

// PermissionWildcard grants every permission
const PermissionWildcard = "*"

// ChangePermission returns the permission code for changing rows of a table
func ChangePermission(table string) string {
	return table + ":change"
}

// ClaimsPermissionChecker decides table permissions from the actor's token claims.
// Superusers and holders of the wildcard may change anything.
type ClaimsPermissionChecker struct{}

// NewClaimsPermissionChecker creates a new ClaimsPermissionChecker
func NewClaimsPermissionChecker() ClaimsPermissionChecker {
	return ClaimsPermissionChecker{}
}

// CanChange reports whether the actor may change rows of the table
func (ClaimsPermissionChecker) CanChange(_ context.Context, actor barcode.Actor, table string) bool {
	if actor.Superuser {
		return true
	}
	required := ChangePermission(table)
	for _, p := range actor.Permissions {
		if p == required || p == PermissionWildcard {
			return true
		}
	}
	return false
}

var _ barcode.PermissionChecker = ClaimsPermissionChecker{}
