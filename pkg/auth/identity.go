package auth

import (
	"github.com/google/uuid"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
)

// Identity is the principal resolved from a verified session token. Role is
// re-read from the directory at resolution time, not taken from the claims.
type Identity struct {
	ID   uuid.UUID
	Role enums.Role
}

// IsAdmin reports whether the identity holds the admin role.
func IsAdmin(id Identity) bool {
	return id.Role == enums.RoleAdmin
}

// IsStaff reports whether the identity holds a staff role.
func IsStaff(id Identity) bool {
	return id.Role.IsStaff()
}

// IsSelfService reports whether the identity is a managed user.
func IsSelfService(id Identity) bool {
	return id.Role == enums.RoleUser
}

// IsOwner reports whether the identity owns the target record.
func IsOwner(id Identity, targetUserID uuid.UUID) bool {
	return id.ID != uuid.Nil && id.ID == targetUserID
}
