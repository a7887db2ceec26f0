package api

import (
	"log/slog"
	"net/http"

	"github.com/teolgogo/quote-engine/internal/api/shared"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/service"
)

// UserHandler handles profile updates.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, log *slog.Logger) *UserHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:  users,
		logger: log.With(slog.String("component", "user_handler")),
	}
}

// UpdateLocation handles PUT /api/me/location.
func (h *UserHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	var req LocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateLocation(r.Context(), actor,
		domain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}, req.Address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update location")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}
