package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/correlation"
	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	declareErr error
	publishErr error
	published  []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name+"/"+kind)
	if !durable {
		return errors.New("exchange must be durable")
	}
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	_, ok := ctx.Deadline()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg, deadline: ok})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(t *testing.T, ch *fakeChannel, log logrus.FieldLogger) *Publisher {
	t.Helper()
	p, err := newPublisher(ch, PublisherOptions{CartKey: "@shop:cart", Logger: log})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewPublisherDeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	newTestPublisher(t, ch, quietLogger())
	assert.Equal(t, []string{"ecommerce.events/topic"}, ch.declared)

	_, err := newPublisher(&fakeChannel{declareErr: errors.New("access refused")}, PublisherOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declare events exchange")
}

func TestPublishCartUpdated(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(t, ch, quietLogger())
	ctx := correlation.WithID(context.Background(), "corr-1")

	c := cart.Cart{
		{ID: 1, Title: "Tênis", Price: decimal.RequireFromString("139.9"), Amount: 2},
		{ID: 3, Title: "Bota", Price: decimal.RequireFromString("10"), Amount: 1},
	}
	require.NoError(t, p.PublishCartUpdated(ctx, c))
	require.Len(t, ch.published, 1)

	got := ch.published[0]
	assert.Equal(t, EventsExchange, got.exchange)
	assert.Equal(t, CartUpdatedRoutingKey, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.True(t, got.deadline)

	env, err := ParseEnvelope(got.msg.Body)
	require.NoError(t, err)
	require.NoError(t, env.Validate(EventTypeCartUpdated, 1))
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.Equal(t, "@shop:cart", env.PartitionKey)
	assert.Equal(t, cartManagerName, env.Producer)
	assert.Equal(t, int64(1), env.Sequence)

	var payload CartUpdatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Equal(t, 3, payload.Quantity)
	assert.Equal(t, 2, len(payload.Items))
	assert.True(t, payload.Total.Equal(decimal.RequireFromString("289.8")))
}

func TestPublishNotification(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(t, ch, quietLogger())

	n := notify.Notification{ID: "n-1", Kind: notify.KindOutOfStock, Message: cart.MsgOutOfStock, ProductID: 4}
	require.NoError(t, p.PublishNotification(context.Background(), n))
	require.NoError(t, p.PublishCartUpdated(context.Background(), cart.Cart{}))
	require.Len(t, ch.published, 2)
	assert.Equal(t, CartNotificationRoutingKey, ch.published[0].key)

	env, err := ParseEnvelope(ch.published[0].msg.Body)
	require.NoError(t, err)
	require.NoError(t, env.Validate(EventTypeCartNotificationRaised, 1))

	var payload CartNotificationRaisedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "n-1", payload.NotificationID)
	assert.Equal(t, "out_of_stock", payload.Kind)
	assert.Equal(t, 4, payload.ProductID)

	second, err := ParseEnvelope(ch.published[1].msg.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Sequence)
}

func TestPublishFailuresAreLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p := newTestPublisher(t, ch, log)

	p.CartUpdated(context.Background(), cart.Cart{})
	p.Notify(context.Background(), notify.Notification{ID: "n-2"})

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "n-2", hook.LastEntry().Data["notificationId"])
}

func TestPublisherClose(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(t, ch, quietLogger())
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestEnvelopeValidate(t *testing.T) {
	base := EventEnvelope{EventName: EventTypeCartUpdated, EventVersion: 1, EventID: "e", PartitionKey: "k"}

	tests := map[string]struct {
		mutate  func(*EventEnvelope)
		wantErr string
	}{
		"valid":            {mutate: func(*EventEnvelope) {}},
		"wrong name":       {mutate: func(e *EventEnvelope) { e.EventName = "Other" }, wantErr: "unexpected eventName"},
		"wrong version":    {mutate: func(e *EventEnvelope) { e.EventVersion = 2 }, wantErr: "unexpected eventVersion"},
		"no partition key": {mutate: func(e *EventEnvelope) { e.PartitionKey = "" }, wantErr: "missing partitionKey"},
		"no event id":      {mutate: func(e *EventEnvelope) { e.EventID = "" }, wantErr: "missing eventId"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			env := base
			tc.mutate(&env)
			err := env.Validate(EventTypeCartUpdated, 1)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
