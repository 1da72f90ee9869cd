package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewHandler(repo Repository, log logrus.FieldLogger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "catalog"})
}

func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s, err := h.repo.Stock(r.Context(), id)
	if err != nil {
		h.fail(w, err, "stock", id)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.repo.Product(r.Context(), id)
	if err != nil {
		h.fail(w, err, "product", id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.Products(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list products")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type adjustRequest struct {
	Amount *int `json:"amount"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil || *req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	if err := h.repo.SetStock(r.Context(), id, *req.Amount); err != nil {
		h.log.WithError(err).WithField("productId", id).Error("adjust stock")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.log.WithFields(logrus.Fields{"productId": id, "amount": *req.Amount}).Info("stock adjusted")
	writeJSON(w, http.StatusOK, Stock{ProductID: id, Amount: *req.Amount})
}

// fail answers 404 with an empty object for unknown ids.
func (h *Handler) fail(w http.ResponseWriter, err error, what string, id int) {
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	h.log.WithError(err).WithField("productId", id).Errorf("load %s", what)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
