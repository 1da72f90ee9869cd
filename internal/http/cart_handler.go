package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
)

type CartService interface {
	Cart() cart.Cart
	AddProduct(ctx context.Context, productID int)
	RemoveProduct(ctx context.Context, productID int)
	UpdateProductAmount(ctx context.Context, u cart.UpdateProductAmount)
}

type NotificationLog interface {
	Recent() []notify.Notification
	ByCorrelationID(id string) []notify.Notification
}

type CartHandler struct {
	cart          CartService
	notifications NotificationLog
}

func NewCartHandler(c CartService, notifications NotificationLog) *CartHandler {
	return &CartHandler{cart: c, notifications: notifications}
}

type itemResponse struct {
	cart.Item
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Items []itemResponse  `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type mutationResponse struct {
	Cart          cartResponse          `json:"cart"`
	Notifications []notify.Notification `json:"notifications"`
}

func toCartResponse(c cart.Cart) cartResponse {
	items := make([]itemResponse, 0, len(c))
	for _, it := range c {
		items = append(items, itemResponse{Item: it, Subtotal: it.Subtotal()})
	}
	return cartResponse{Items: items, Total: c.Total(), Count: c.Count()}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCartResponse(h.cart.Cart()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	ctx, raised := notify.Capture(r.Context())
	h.cart.AddProduct(ctx, productID)
	h.writeMutation(w, raised())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	ctx, raised := notify.Capture(r.Context())
	h.cart.RemoveProduct(ctx, productID)
	h.writeMutation(w, raised())
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var body struct {
		Amount *int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Amount == nil {
		writeError(w, r, http.StatusBadRequest, "amount is required")
		return
	}

	ctx, raised := notify.Capture(r.Context())
	h.cart.UpdateProductAmount(ctx, cart.UpdateProductAmount{
		ProductID: productID,
		Amount:    *body.Amount,
	})
	h.writeMutation(w, raised())
}

func (h *CartHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if cid := r.URL.Query().Get("correlationId"); cid != "" {
		writeJSON(w, http.StatusOK, h.notifications.ByCorrelationID(cid))
		return
	}
	writeJSON(w, http.StatusOK, h.notifications.Recent())
}

// writeMutation answers with the cart and the notifications raised while
// serving this request.
func (h *CartHandler) writeMutation(w http.ResponseWriter, raised []notify.Notification) {
	writeJSON(w, http.StatusOK, mutationResponse{
		Cart:          toCartResponse(h.cart.Cart()),
		Notifications: raised,
	})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid productId")
		return 0, false
	}
	return id, true
}
