package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"
)

const (
	EventTypeCartUpdated = "CartUpdated"
	cartUpdatedSchema    = "contracts/events/cart/CartUpdated.v1.payload.schema.json"
)

type CartItemEvent struct {
	ProductID int             `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Amount    int             `json:"amount"`
}

type CartUpdatedPayload struct {
	CartKey   string          `json:"cartKey"`
	Items     []CartItemEvent `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
	Quantity  int             `json:"quantity"`
	Timestamp time.Time       `json:"timestamp"`
}

type CartUpdatedEvent struct {
	EventEnvelope
	Payload CartUpdatedPayload `json:"payload"`
}

func newCartUpdatedPayload(key string, c cart.Cart, at time.Time) CartUpdatedPayload {
	items := make([]CartItemEvent, 0, len(c))
	quantity := 0
	for _, it := range c {
		quantity += it.Amount
		items = append(items, CartItemEvent{
			ProductID: it.ID,
			Title:     it.Title,
			Price:     it.Price,
			Amount:    it.Amount,
		})
	}
	return CartUpdatedPayload{
		CartKey:   key,
		Items:     items,
		Total:     c.Total(),
		Count:     c.Count(),
		Quantity:  quantity,
		Timestamp: at,
	}
}

func newCartUpdatedEvent(meta EventMeta, seq int64, producer string, payload CartUpdatedPayload, occurredAt time.Time) CartUpdatedEvent {
	return CartUpdatedEvent{
		EventEnvelope: newEnvelope(EventTypeCartUpdated, cartUpdatedSchema, meta, seq, producer, occurredAt),
		Payload:       payload,
	}
}
