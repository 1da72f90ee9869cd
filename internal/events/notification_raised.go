package events

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
)

const (
	EventTypeCartNotificationRaised = "CartNotificationRaised"
	cartNotificationRaisedSchema    = "contracts/events/cart/CartNotificationRaised.v1.payload.schema.json"
)

type CartNotificationRaisedPayload struct {
	CartKey        string    `json:"cartKey"`
	NotificationID string    `json:"notificationId"`
	Kind           string    `json:"kind"`
	Message        string    `json:"message"`
	ProductID      int       `json:"productId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type CartNotificationRaisedEvent struct {
	EventEnvelope
	Payload CartNotificationRaisedPayload `json:"payload"`
}

func newCartNotificationRaisedPayload(key string, n notify.Notification) CartNotificationRaisedPayload {
	return CartNotificationRaisedPayload{
		CartKey:        key,
		NotificationID: n.ID,
		Kind:           string(n.Kind),
		Message:        n.Message,
		ProductID:      n.ProductID,
		Timestamp:      n.At,
	}
}

func newCartNotificationRaisedEvent(meta EventMeta, seq int64, producer string, payload CartNotificationRaisedPayload, occurredAt time.Time) CartNotificationRaisedEvent {
	return CartNotificationRaisedEvent{
		EventEnvelope: newEnvelope(EventTypeCartNotificationRaised, cartNotificationRaisedSchema, meta, seq, producer, occurredAt),
		Payload:       payload,
	}
}
