package events

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/correlation"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
)

const publishTimeout = 3 * time.Second

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch                 Channel
	log                logrus.FieldLogger
	cartKey            string
	producerIdentifier string
	seq                atomic.Int64
	now                func() time.Time
}

type PublisherOptions struct {
	Producer string
	// CartKey is used as partition key; sequences are per publisher.
	CartKey string
	Logger  logrus.FieldLogger
}

func NewPublisher(conn *amqp.Connection, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open channel")
	}
	p, err := newPublisher(ch, opts)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(ch Channel, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, errors.Wrap(err, "declare events exchange")
	}

	producer := opts.Producer
	if producer == "" {
		producer = cartManagerName
	}
	key := opts.CartKey
	if key == "" {
		key = cart.DefaultStorageKey
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Publisher{
		ch:                 ch,
		log:                log,
		cartKey:            key,
		producerIdentifier: producer,
		now:                func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

type EventMeta struct {
	CorrelationID string
	CausationID   string
	PartitionKey  string
}

func (p *Publisher) meta(ctx context.Context) EventMeta {
	return EventMeta{
		CorrelationID: correlation.ID(ctx),
		PartitionKey:  p.cartKey,
	}
}

func (p *Publisher) PublishCartUpdated(ctx context.Context, c cart.Cart) error {
	timestamp := p.now()
	payload := newCartUpdatedPayload(p.cartKey, c, timestamp)

	env := newCartUpdatedEvent(p.meta(ctx), p.seq.Add(1), p.producerIdentifier, payload, timestamp)
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal CartUpdated envelope")
	}
	return p.publishJSON(ctx, CartUpdatedRoutingKey, body)
}

func (p *Publisher) PublishNotification(ctx context.Context, n notify.Notification) error {
	timestamp := p.now()
	payload := newCartNotificationRaisedPayload(p.cartKey, n)

	env := newCartNotificationRaisedEvent(p.meta(ctx), p.seq.Add(1), p.producerIdentifier, payload, timestamp)
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal CartNotificationRaised envelope")
	}
	return p.publishJSON(ctx, CartNotificationRoutingKey, body)
}

// CartUpdated has the cart.Observer signature. Publish failures are logged
// and never reach the cart operation.
func (p *Publisher) CartUpdated(ctx context.Context, c cart.Cart) {
	if err := p.PublishCartUpdated(ctx, c); err != nil {
		p.log.WithError(err).WithField("correlationId", correlation.ID(ctx)).Warn("publish CartUpdated")
	}
}

// Notify implements notify.Notifier.
func (p *Publisher) Notify(ctx context.Context, n notify.Notification) {
	if err := p.PublishNotification(ctx, n); err != nil {
		p.log.WithError(err).WithField("notificationId", n.ID).Warn("publish CartNotificationRaised")
	}
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func newEnvelope(name, schema string, meta EventMeta, seq int64, producer string, occurredAt time.Time) EventEnvelope {
	return EventEnvelope{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  meta.PartitionKey,
		Sequence:      seq,
		OccurredAt:    occurredAt,
		Schema:        schema,
	}
}
