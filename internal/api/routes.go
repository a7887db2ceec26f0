package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/teolgogo/quote-engine/internal/api/middleware"
	"github.com/teolgogo/quote-engine/internal/domain"
)

// Handlers groups every HTTP handler mounted under /api.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Quotes   *QuoteHandler
	Payments *PaymentHandler
	Reviews  *ReviewHandler
}

// Routes returns the /api route table. Mutating endpoints pass through
// rateLimit after authentication so buckets are keyed by actor.
func Routes(h Handlers, authMW *middleware.AuthMiddleware, rateLimit func(http.Handler) http.Handler) func(chi.Router) {
	if rateLimit == nil {
		rateLimit = func(next http.Handler) http.Handler { return next }
	}
	customer := middleware.RequireRole(domain.RoleCustomer)
	business := middleware.RequireRole(domain.RoleBusiness)

	return func(r chi.Router) {
		r.With(rateLimit).Post("/auth/register", h.Auth.Register)
		r.With(rateLimit).Post("/auth/login", h.Auth.Login)
		r.With(rateLimit).Post("/auth/refresh", h.Auth.RefreshToken)
		r.Get("/businesses/{id}/reviews", h.Reviews.ListForBusiness)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)

			r.Get("/me", h.Auth.Me)
			r.With(rateLimit).Put("/me/location", h.Users.UpdateLocation)

			r.Route("/quotes", func(r chi.Router) {
				r.With(customer, rateLimit).Post("/", h.Quotes.CreateRequest)
				r.With(customer).Get("/", h.Quotes.ListMine)
				r.With(business).Get("/available", h.Quotes.ListAvailable)
				r.Get("/{id}", h.Quotes.GetDetails)
				r.With(customer, rateLimit).Post("/{id}/cancel", h.Quotes.Cancel)
				r.With(business, rateLimit).Post("/{id}/offers", h.Quotes.SubmitOffer)
				r.With(customer, rateLimit).Post("/{id}/offers/{offerId}/accept", h.Quotes.AcceptOffer)
			})

			r.With(business, rateLimit).Post("/offers/{offerId}/complete", h.Quotes.Complete)
			r.With(business).Get("/offers/mine", h.Quotes.ListMyOffers)

			r.Route("/payments", func(r chi.Router) {
				r.With(customer, rateLimit).Post("/prepare", h.Payments.Prepare)
				r.With(customer, rateLimit).Post("/confirm", h.Payments.Confirm)
				r.With(rateLimit).Post("/{id}/cancel", h.Payments.Cancel)
				r.Get("/offer/{offerId}", h.Payments.GetForOffer)
				r.Get("/mine", h.Payments.ListMine)
			})

			r.With(customer, rateLimit).Post("/reviews", h.Reviews.Create)
			r.With(customer, rateLimit).Put("/reviews/{id}", h.Reviews.Update)
			r.With(customer, rateLimit).Delete("/reviews/{id}", h.Reviews.Delete)

			r.Get("/businesses/{id}/stats", h.Reviews.Stats)
		})
	}
}
