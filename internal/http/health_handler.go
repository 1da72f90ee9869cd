package http

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/clients"
)

type HealthHandler struct {
	Service string
	Probes  []clients.HealthProbe
}

func (h *HealthHandler) Self(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.Service,
	})
}

func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results := clients.CheckAll(r.Context(), h.Probes)

	status, code := "ok", http.StatusOK
	if !clients.Healthy(results) {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":   status,
		"service":  h.Service,
		"upstream": results,
	})
}
