package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the kind of account an authenticated actor holds.
type Role string

// Supported roles.
const (
	RoleCustomer Role = "CUSTOMER"
	RoleBusiness Role = "BUSINESS"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// User validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrInvalidRole      = errors.New("invalid role")
)

// User is a registered marketplace account. Businesses carry the
// denormalized service counter and rating aggregate.
type User struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Password          string    `json:"-"`
	HashedPassword    string    `json:"-"`
	Role              Role      `json:"role"`
	Phone             string    `json:"phone,omitempty"`
	Location          *Location `json:"location,omitempty"`
	Address           string    `json:"address,omitempty"`
	BusinessName      string    `json:"business_name,omitempty"`
	CompletedServices int       `json:"completed_services"`
	AverageRating     float64   `json:"average_rating"`
	ReviewCount       int       `json:"review_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, plaintext password and role.
// The caller hashes the password before storage.
func NewUser(email, password, name string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      name,
		Password:  password,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyUserID)
	}
	if u.Email == "" {
		return NewValidationError("email", "cannot be empty", ErrEmptyEmail)
	}
	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", "has invalid format", ErrInvalidEmail)
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "is not supported", ErrInvalidRole)
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return NewValidationError("password", "is too short", ErrPasswordTooShort)
		}
		if len(u.Password) > 72 {
			return NewValidationError("password", "is too long", ErrPasswordTooLong)
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "cannot be empty", ErrEmptyPassword)
	}

	if u.Location != nil {
		if err := u.Location.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// IsBusiness reports whether the user is a grooming business.
func (u *User) IsBusiness() bool {
	return u.Role == RoleBusiness
}

// DisplayName prefers the business name for businesses.
func (u *User) DisplayName() string {
	if u.IsBusiness() && u.BusinessName != "" {
		return u.BusinessName
	}
	return u.Name
}

// validateEmailFormat checks for a local part, an @ and a dotted domain.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domainPart := email[at+1:]
	if len(domainPart) < 3 {
		return false
	}

	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
