package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Auth           *Authenticator
	Users          *UserHandler
	Products       *ProductHandler
	Orders         *OrderHandler
	Uploads        *UploadHandler
	UploadDir      string
	PayPalClientID string
}

func NewRouter(h Handlers) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not Found - "+r.URL.Path)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithText(w, http.StatusOK, "OK")
	})

	router.Route("/api", func(r chi.Router) {
		h.Users.RegisterRoutes(r, h.Auth)
		h.Products.RegisterRoutes(r, h.Auth)
		h.Orders.RegisterRoutes(r, h.Auth)
		h.Uploads.RegisterRoutes(r)

		r.Get("/config/paypal", func(w http.ResponseWriter, r *http.Request) {
			respondWithText(w, http.StatusOK, h.PayPalClientID)
		})
	})

	ServeUploads(router, h.UploadDir)

	return router
}
