package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.log, NoColor: true}))

	r.Get("/health", h.Health)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{productId}", h.GetProduct)

	r.Route("/stock", func(r chi.Router) {
		r.Get("/{productId}", h.GetStock)
		r.Put("/{productId}", h.AdjustStock)
	})

	return r
}
