package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/teolgogo/quote-engine/internal/api"
	apiMiddleware "github.com/teolgogo/quote-engine/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	handlers := api.Handlers{
		Auth:     api.NewAuthHandler(app.userService, app.jwtService, &app.config.Auth, app.logger),
		Users:    api.NewUserHandler(app.userService, app.logger),
		Quotes:   api.NewQuoteHandler(app.quoteService, app.logger),
		Payments: api.NewPaymentHandler(app.paymentService, app.logger),
		Reviews:  api.NewReviewHandler(app.reviewService, app.statsService, app.logger),
	}
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	var rateLimit func(http.Handler) http.Handler
	if app.redis != nil {
		limiter := apiMiddleware.NewRedisLimiter(app.redis, app.config.RateLimit)
		rateLimit = apiMiddleware.RateLimit(limiter, limiter.Capacity())
	}

	r.Route("/api", api.Routes(handlers, authMiddleware, rateLimit))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
