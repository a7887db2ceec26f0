package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/service/auth"
	"github.com/teolgogo/quote-engine/internal/store"
)

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Email        string
	Password     string
	Name         string
	Role         domain.Role
	Phone        string
	BusinessName string
	Address      string
	Location     *domain.Location
}

// UserService provides account operations.
type UserService interface {
	// Register creates a CUSTOMER or BUSINESS account.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate checks an email and password pair. A wrong email and a
	// wrong password fail the same way, with domain.ErrUnauthorized.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateLocation stores the actor's location and address.
	UpdateLocation(ctx context.Context, actor domain.Actor, loc domain.Location, address string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	tx     store.Transactor
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(tx store.Transactor, users store.UserStore, hasher auth.PasswordHasher, log *slog.Logger) *UserServiceImpl {
	if log == nil {
		log = slog.Default()
	}
	return &UserServiceImpl{
		tx:     tx,
		users:  users,
		hasher: hasher,
		logger: log.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.
func (s *UserServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	const op = "register"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.Role != domain.RoleCustomer && in.Role != domain.RoleBusiness {
		return nil, newError(op, domain.ErrInvalidArgument, "role must be CUSTOMER or BUSINESS")
	}

	user, err := domain.NewUser(in.Email, in.Password, strings.TrimSpace(in.Name), in.Role)
	if err != nil {
		return nil, wrapError(op, "invalid account data", err)
	}
	user.Phone = in.Phone
	user.Address = in.Address
	user.Location = in.Location
	if user.IsBusiness() {
		user.BusinessName = strings.TrimSpace(in.BusinessName)
	}
	if err := user.Validate(); err != nil {
		return nil, wrapError(op, "invalid account data", err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, wrapError(op, "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		return tx.Users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register an existing email", slog.String("email", user.Email))
			return nil, wrapError(op, "email already registered", err)
		}
		log.Error("failed to save user",
			slog.String("error", err.Error()),
			slog.String("email", user.Email))
		return nil, wrapError(op, "failed to save user", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return user, nil
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "authenticate"
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login with unknown email")
			return nil, newError(op, domain.ErrUnauthorized, "invalid credentials")
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, wrapError(op, "failed to load user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, newError(op, domain.ErrUnauthorized, "invalid credentials")
	}

	return user, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// UpdateLocation implements UserService.
func (s *UserServiceImpl) UpdateLocation(
	ctx context.Context,
	actor domain.Actor,
	loc domain.Location,
	address string,
) (*domain.User, error) {
	const op = "update_location"

	if err := loc.Validate(); err != nil {
		return nil, wrapError(op, "invalid location", err)
	}

	var updated *domain.User
	err := s.tx.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		user, err := tx.Users.GetForUpdate(ctx, actor.UserID)
		if err != nil {
			return wrapError(op, "failed to load user", err)
		}
		user.Location = &loc
		if address != "" {
			user.Address = address
		}
		if err := tx.Users.Update(ctx, user); err != nil {
			return wrapError(op, "failed to save location", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("location updated",
		slog.String("user_id", actor.UserID.String()))
	return updated, nil
}

var _ UserService = (*UserServiceImpl)(nil)
