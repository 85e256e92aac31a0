package domain

import "strings"

// RoleAdmin is the only role the engine distinguishes.
const RoleAdmin = "admin"

// Identity is the authenticated caller resolved by the transport layer.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin compares the role case-insensitively against "admin".
// A nil identity is never an admin.
func (i *Identity) IsAdmin() bool {
	return i != nil && strings.EqualFold(strings.TrimSpace(i.Role), RoleAdmin)
}

// Authenticated reports whether the identity carries a user id.
func (i *Identity) Authenticated() bool {
	return i != nil && i.ID != ""
}

// Actor returns the best available label for audit lines.
func (i *Identity) Actor() string {
	switch {
	case i == nil:
		return "unknown-admin"
	case i.ID != "":
		return i.ID
	case i.Email != "":
		return i.Email
	default:
		return "unknown-admin"
	}
}
