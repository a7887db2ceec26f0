package domain

import "github.com/google/uuid"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// Is reports whether the actor is userID acting with role.
func (a Actor) Is(userID uuid.UUID, role Role) bool {
	return a.UserID == userID && a.Role == role
}
