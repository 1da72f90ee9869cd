package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/correlation"
)

type Kind string

const (
	KindOutOfStock      Kind = "out_of_stock"
	KindProductNotFound Kind = "product_not_found"
	KindFailure         Kind = "failure"
)

type Notification struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	Message       string    `json:"message"`
	ProductID     int       `json:"productId,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	At            time.Time `json:"at"`
}

// New stamps a notification with an id, the current time and the
// correlation id carried by ctx.
func New(ctx context.Context, kind Kind, message string, productID int) Notification {
	return Notification{
		ID:            uuid.NewString(),
		Kind:          kind,
		Message:       message,
		ProductID:     productID,
		CorrelationID: correlation.ID(ctx),
		At:            time.Now().UTC(),
	}
}

// Notifier delivers user-visible messages. Delivery is fire and forget.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Hub fans a notification out to every registered sink in order.
type Hub struct {
	mu    sync.RWMutex
	sinks []Notifier
}

func NewHub(sinks ...Notifier) *Hub {
	return &Hub{sinks: sinks}
}

func (h *Hub) Add(n Notifier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, n)
}

func (h *Hub) Notify(ctx context.Context, n Notification) {
	h.mu.RLock()
	sinks := make([]Notifier, len(h.sinks))
	copy(sinks, h.sinks)
	h.mu.RUnlock()

	captured(ctx, n)
	for _, s := range sinks {
		s.Notify(ctx, n)
	}
}

type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	l.log.WithFields(logrus.Fields{
		"notificationId": n.ID,
		"kind":           n.Kind,
		"productId":      n.ProductID,
		"correlationId":  n.CorrelationID,
	}).Warn(n.Message)
}
