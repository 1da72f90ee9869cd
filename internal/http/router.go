package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/metrics"
)

type Deps struct {
	Logger logrus.FieldLogger

	Cart          CartService
	Notifications NotificationLog

	HealthProbes []clients.HealthProbe

	// Optional
	Metrics        *metrics.ServerMetrics
	MetricsHandler http.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationID)
	r.Use(Logging(d.Logger))
	r.Use(Recover(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	health := &HealthHandler{Service: "cart-manager", Probes: d.HealthProbes}
	r.Get("/health", health.Self)
	r.Get("/health/upstreams", health.Upstreams)
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	cart := NewCartHandler(d.Cart, d.Notifications)
	r.Route("/api", func(r chi.Router) {
		r.Get("/cart", cart.GetCart)
		r.Post("/cart/items/{productId}", cart.AddItem)
		r.Put("/cart/items/{productId}", cart.UpdateItem)
		r.Delete("/cart/items/{productId}", cart.RemoveItem)
		r.Get("/notifications", cart.Notifications)
	})

	return r
}
