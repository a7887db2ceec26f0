package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/store"
)

// UserStore implements store.UserStore.
type UserStore struct {
	db   *DB
	inTx bool
}

var _ store.UserStore = (*UserStore)(nil)

// Create saves a new user, rejecting duplicate emails.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	return s.db.write(s.inTx, func(t *tables) error {
		for _, existing := range t.users {
			if existing.Email == user.Email {
				return store.ErrEmailExists
			}
		}
		t.users[user.ID] = cloneUser(user)
		return nil
	})
}

// GetByID retrieves a user by id.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := s.db.read(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return store.ErrUserNotFound
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := s.db.read(func(t *tables) error {
		for _, u := range t.users {
			if u.Email == email {
				out = cloneUser(u)
				return nil
			}
		}
		return store.ErrUserNotFound
	})
	return out, err
}

// GetForUpdate is GetByID; the unit-of-work lock already excludes writers.
func (s *UserStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.GetByID(ctx, id)
}

// Update replaces a stored user.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	return s.db.write(s.inTx, func(t *tables) error {
		if _, ok := t.users[user.ID]; !ok {
			return store.ErrUserNotFound
		}
		t.users[user.ID] = cloneUser(user)
		return nil
	})
}

// ListBusinesses returns every business account, oldest first.
func (s *UserStore) ListBusinesses(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	err := s.db.read(func(t *tables) error {
		for _, u := range t.users {
			if u.Role == domain.RoleBusiness {
				out = append(out, cloneUser(u))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}
