package http

import (
	"encoding/json"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/correlation"
)

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:         msg,
		CorrelationID: correlation.ID(r.Context()),
	})
}
