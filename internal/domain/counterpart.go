package domain

import "github.com/google/uuid"

// Participants are the two fixed parties of a customer/business exchange.
type Participants struct {
	CustomerID uuid.UUID
	BusinessID uuid.UUID
}

// Counterpart returns the other party for an actor holding role.
// Admins and unknown roles have no counterpart.
func Counterpart(role Role, p Participants) (uuid.UUID, bool) {
	switch role {
	case RoleCustomer:
		return p.BusinessID, p.BusinessID != uuid.Nil
	case RoleBusiness:
		return p.CustomerID, p.CustomerID != uuid.Nil
	}
	return uuid.Nil, false
}
