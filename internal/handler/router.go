package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/rental-store/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса проката.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(custommiddleware.Recoverer(h.logger))
	r.Use(custommiddleware.GzipMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.Health)

		r.Post("/users", h.Register)
		r.Post("/auth", h.Login)

		r.Get("/genres", h.ListGenres)
		r.Get("/genres/{id}", h.GetGenre)
		r.Get("/movies", h.ListMovies)
		r.Get("/movies/{id}", h.GetMovie)
		r.Get("/customers", h.ListCustomers)
		r.Get("/customers/{id}", h.GetCustomer)
		r.Get("/rentals", h.ListRentals)
		r.Get("/rentals/{id}", h.GetRental)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/users/me", h.Me)

			r.Post("/genres", h.CreateGenre)
			r.Put("/genres/{id}", h.UpdateGenre)
			r.With(custommiddleware.RequireAdmin).Delete("/genres/{id}", h.DeleteGenre)

			r.Post("/movies", h.CreateMovie)
			r.Put("/movies/{id}", h.UpdateMovie)
			r.Delete("/movies/{id}", h.DeleteMovie)

			r.Post("/customers", h.CreateCustomer)
			r.Put("/customers/{id}", h.UpdateCustomer)
			r.Delete("/customers/{id}", h.DeleteCustomer)

			r.Post("/rentals", h.Checkout)
			r.Post("/returns", h.Return)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
