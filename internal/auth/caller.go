// Package auth carries caller identity and issues tokens.
package auth

import (
	"skillup-go/internal/models"
)

// Caller is the authenticated identity passed explicitly to every handler.
// The zero value is an anonymous caller.
type Caller struct {
	UserID uint
	Role   models.Role
}

func Anonymous() Caller {
	return Caller{}
}

func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// CanAuthor reports whether the caller may manage learning content.
func (c Caller) CanAuthor() bool {
	return c.Role == models.RoleContentCreator || c.Role == models.RoleAdmin
}

// Owns reports whether the caller is the given user, or an admin acting for them.
func (c Caller) Owns(userID uint) bool {
	return c.Authenticated() && (c.UserID == userID || c.IsAdmin())
}
