package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
)

const tracerName = "github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"

type StockService interface {
	Stock(ctx context.Context, productID int) (Stock, error)
}

// CatalogService returns nil without an error when the catalog has no data
// for the product.
type CatalogService interface {
	Product(ctx context.Context, productID int) (*Product, error)
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Instrumentation receives one observation per finished operation.
type Instrumentation interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
}

// Observer is called after every committed change with a copy of the cart.
// Observers run on the mutating goroutine.
type Observer func(ctx context.Context, c Cart)

type Deps struct {
	Stock    StockService
	Catalog  CatalogService
	Store    Store
	Notifier notify.Notifier
}

type Option func(*Manager)

func WithStorageKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tracer = tp.Tracer(tracerName) }
}

func WithInstrumentation(i Instrumentation) Option {
	return func(m *Manager) { m.instr = i }
}

// WithSerializedMutations makes operations run one at a time. Without it
// concurrent operations read the same snapshot and the last commit wins.
func WithSerializedMutations() Option {
	return func(m *Manager) { m.serialize = true }
}

// Manager owns the cart for one storage key. Its operations never return
// errors: failures become notifications and leave the cart untouched.
type Manager struct {
	stock    StockService
	catalog  CatalogService
	store    Store
	notifier notify.Notifier

	key       string
	log       logrus.FieldLogger
	tracer    trace.Tracer
	instr     Instrumentation
	serialize bool

	opMu sync.Mutex

	mu        sync.RWMutex
	cart      Cart
	observers map[int]Observer
	nextObs   int
}

// New restores the cart from storage. A snapshot that cannot be decoded is
// discarded and the cart starts empty; a storage read error is returned.
func New(ctx context.Context, d Deps, opts ...Option) (*Manager, error) {
	if d.Stock == nil || d.Catalog == nil || d.Store == nil {
		return nil, errors.New("cart manager requires stock, catalog and store")
	}

	m := &Manager{
		stock:     d.Stock,
		catalog:   d.Catalog,
		store:     d.Store,
		notifier:  d.Notifier,
		key:       DefaultStorageKey,
		log:       logrus.StandardLogger(),
		tracer:    otel.Tracer(tracerName),
		observers: map[int]Observer{},
		cart:      Cart{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = notify.Func(func(context.Context, notify.Notification) {})
	}

	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		return nil, errors.Wrapf(err, "read cart snapshot %q", m.key)
	}
	if ok && raw != "" {
		restored, err := DecodeSnapshot(raw)
		if err != nil {
			m.log.WithError(err).WithField("key", m.key).Warn("discarding unreadable cart snapshot")
		} else {
			m.cart = restored
		}
	}

	m.log.WithFields(logrus.Fields{"key": m.key, "items": len(m.cart)}).Debug("cart restored")
	return m, nil
}

// Cart returns a copy of the current cart.
func (m *Manager) Cart() Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.Clone()
}

// Subscribe registers fn for committed changes and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Observer) func() {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) AddProduct(ctx context.Context, productID int) {
	m.run(ctx, opAdd, productID, func(ctx context.Context) error {
		return m.addProduct(ctx, productID)
	})
}

func (m *Manager) RemoveProduct(ctx context.Context, productID int) {
	m.run(ctx, opRemove, productID, func(ctx context.Context) error {
		return m.removeProduct(ctx, productID)
	})
}

func (m *Manager) UpdateProductAmount(ctx context.Context, u UpdateProductAmount) {
	m.run(ctx, opUpdate, u.ProductID, func(ctx context.Context) error {
		return m.updateProductAmount(ctx, u)
	})
}

func (m *Manager) addProduct(ctx context.Context, productID int) error {
	updated := m.Cart()
	idx := updated.index(productID)

	current := 0
	if idx >= 0 {
		current = updated[idx].Amount
	}

	stock, err := m.stock.Stock(ctx, productID)
	if err != nil {
		return errors.Wrapf(err, "fetch stock for product %d", productID)
	}
	amount := current + 1
	if amount > stock.Amount {
		return ErrOutOfStock
	}

	if idx >= 0 {
		updated[idx].Amount = amount
		return m.commit(ctx, updated)
	}

	product, err := m.catalog.Product(ctx, productID)
	if err != nil {
		return errors.Wrapf(ErrCatalogLookup, "product %d: %v", productID, err)
	}
	if product == nil || product.ID == 0 {
		return errors.Wrapf(ErrCatalogLookup, "product %d: no catalog data", productID)
	}

	updated = append(updated, Item{
		ID:       productID,
		Title:    product.Title,
		Price:    product.Price,
		ImageURL: product.ImageURL,
		Amount:   1,
	})
	return m.commit(ctx, updated)
}

func (m *Manager) removeProduct(ctx context.Context, productID int) error {
	updated := m.Cart()
	idx := updated.index(productID)
	if idx < 0 {
		return ErrProductNotFound
	}
	updated = append(updated[:idx], updated[idx+1:]...)
	return m.commit(ctx, updated)
}

func (m *Manager) updateProductAmount(ctx context.Context, u UpdateProductAmount) error {
	if u.Amount <= 0 {
		return errIgnored
	}

	updated := m.Cart()

	// Stock is checked before membership, so an unknown product with too
	// little stock reports out of stock.
	stock, err := m.stock.Stock(ctx, u.ProductID)
	if err != nil {
		return errors.Wrapf(err, "fetch stock for product %d", u.ProductID)
	}
	if stock.Amount < u.Amount {
		return ErrOutOfStock
	}

	idx := updated.index(u.ProductID)
	if idx < 0 {
		return ErrProductNotFound
	}
	updated[idx].Amount = u.Amount
	return m.commit(ctx, updated)
}

// commit persists first; the in-memory cart only changes once the write
// succeeded.
func (m *Manager) commit(ctx context.Context, updated Cart) error {
	raw, err := EncodeSnapshot(updated)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.key, raw); err != nil {
		return errors.Wrapf(err, "persist cart snapshot %q", m.key)
	}

	m.mu.Lock()
	m.cart = updated
	observers := make([]Observer, 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.Unlock()

	for _, fn := range observers {
		m.observe(ctx, fn, updated.Clone())
	}
	return nil
}

// observe runs one observer. The change is already committed at this point,
// so a panicking observer is logged and never reported as a failed operation.
func (m *Manager) observe(ctx context.Context, fn Observer, c Cart) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.WithField("panic", rec).Error("cart observer panicked")
		}
	}()
	fn(ctx, c)
}

type operation struct {
	name    string
	failure string
}

var (
	opAdd    = operation{name: "add_product", failure: MsgAddFailed}
	opRemove = operation{name: "remove_product", failure: MsgRemoveFailed}
	opUpdate = operation{name: "update_product_amount", failure: MsgUpdateFailed}
)

func (m *Manager) run(ctx context.Context, op operation, productID int, fn func(context.Context) error) {
	if m.serialize {
		m.opMu.Lock()
		defer m.opMu.Unlock()
	}

	ctx, span := m.tracer.Start(ctx, "cart."+op.name, trace.WithAttributes(
		attribute.Int("product.id", productID),
	))
	defer span.End()

	start := time.Now()
	err := m.guard(ctx, fn)
	outcome := m.settle(ctx, op, productID, err)

	span.SetAttributes(attribute.String("cart.outcome", outcome))
	if outcome != outcomeOK && outcome != outcomeIgnored {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if m.instr != nil {
		m.instr.ObserveOperation(op.name, outcome, time.Since(start))
	}
}

// guard turns a panic raised by a collaborator into an error.
func (m *Manager) guard(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx)
}

const (
	outcomeOK         = "ok"
	outcomeIgnored    = "ignored"
	outcomeAborted    = "aborted"
	outcomeOutOfStock = "out_of_stock"
	outcomeNotFound   = "not_found"
	outcomeError      = "error"
)

func (m *Manager) settle(ctx context.Context, op operation, productID int, err error) string {
	log := m.log.WithFields(logrus.Fields{"operation": op.name, "productId": productID})

	switch {
	case err == nil:
		log.Debug("cart updated")
		return outcomeOK
	case errors.Is(err, errIgnored):
		return outcomeIgnored
	case errors.Is(err, ErrCatalogLookup):
		log.WithError(err).Warn("add aborted")
		return outcomeAborted
	case errors.Is(err, ErrOutOfStock):
		log.Info(MsgOutOfStock)
		m.notifier.Notify(ctx, notify.New(ctx, notify.KindOutOfStock, MsgOutOfStock, productID))
		return outcomeOutOfStock
	case errors.Is(err, ErrProductNotFound):
		log.Info("product not in cart")
		m.notifier.Notify(ctx, notify.New(ctx, notify.KindProductNotFound, op.failure, productID))
		return outcomeNotFound
	default:
		log.WithError(err).Error("cart operation failed")
		m.notifier.Notify(ctx, notify.New(ctx, notify.KindFailure, op.failure, productID))
		return outcomeError
	}
}
