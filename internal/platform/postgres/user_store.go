package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

const userColumns = `id, email, name, hashed_password, role, phone, latitude, longitude,
	address, business_name, completed_services, average_rating, review_count,
	created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that is managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}
	if user.HashedPassword == "" {
		return store.NewStoreError("user", "create", "password must be hashed", store.ErrInvalidEntity)
	}

	lat, lng := coordinates(user.Location)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		user.ID, user.Email, user.Name, user.HashedPassword, user.Role, user.Phone,
		lat, lng, user.Address, user.BusinessName, user.CompletedServices,
		user.AverageRating, user.ReviewCount, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		err = MapError(err)
		if store.IsDuplicateError(err) {
			log.Debug("email already registered", slog.String("email", user.Email))
			return err
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetForUpdate implements store.UserStore.GetForUpdate
func (s *PostgresUserStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresUserStore) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		err = mapNotFound(err, store.ErrUserNotFound)
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user",
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	return user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	lat, lng := coordinates(user.Location)
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, phone = $3, latitude = $4, longitude = $5, address = $6,
			business_name = $7, completed_services = $8, average_rating = $9,
			review_count = $10, updated_at = $11
		WHERE id = $1`,
		user.ID, user.Name, user.Phone, lat, lng, user.Address, user.BusinessName,
		user.CompletedServices, user.AverageRating, user.ReviewCount, user.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// ListBusinesses implements store.UserStore.ListBusinesses
func (s *PostgresUserStore) ListBusinesses(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at`,
		domain.RoleBusiness)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, MapError(err)
		}
		users = append(users, u)
	}
	return users, MapError(rows.Err())
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u        domain.User
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.HashedPassword, &u.Role, &u.Phone, &lat, &lng,
		&u.Address, &u.BusinessName, &u.CompletedServices, &u.AverageRating, &u.ReviewCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Location = location(lat, lng)
	return &u, nil
}
