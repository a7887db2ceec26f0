package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The caller must have hashed the password.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetForUpdate retrieves a user with a row-level lock. Used when the
	// denormalized counters are about to be rewritten.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Update rewrites the profile, location and aggregate fields.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// ListBusinesses returns every BUSINESS account.
	ListBusinesses(ctx context.Context) ([]*domain.User, error)
}
