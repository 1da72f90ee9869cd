package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/notify"
)

type fakeStock struct {
	mu     sync.Mutex
	stock  map[int]int
	err    error
	panics bool
	calls  int

	// gate blocks lookups for one product until released.
	gateID  int
	entered chan struct{}
	release chan struct{}
}

func (f *fakeStock) Stock(_ context.Context, productID int) (Stock, error) {
	f.mu.Lock()
	f.calls++
	gated := f.release != nil && productID == f.gateID
	f.mu.Unlock()

	if gated {
		f.entered <- struct{}{}
		<-f.release
	}
	if f.panics {
		panic("stock backend exploded")
	}
	if f.err != nil {
		return Stock{}, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	amount, ok := f.stock[productID]
	if !ok {
		return Stock{}, errors.New("404 Not Found")
	}
	return Stock{ProductID: productID, Amount: amount}, nil
}

func (f *fakeStock) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int]Product
	err      error
	empty    bool
	calls    int
}

func (f *fakeCatalog) Product(_ context.Context, productID int) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return nil, nil
	}
	p, ok := f.products[productID]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return &p, nil
}

type fakeStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string]string{}} }

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeStore) value(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key]
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingNotifier) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notification, len(r.got))
	copy(out, r.got)
	return out
}

type observation struct {
	operation string
	outcome   string
}

type recordingInstrumentation struct {
	mu  sync.Mutex
	got []observation
}

func (r *recordingInstrumentation) ObserveOperation(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, observation{operation: op, outcome: outcome})
}

func catalogFixture() map[int]Product {
	return map[int]Product{
		1: {ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: decimal.RequireFromString("179.9"), ImageURL: "https://example.test/1.jpg"},
		2: {ID: 2, Title: "Tênis VR Caminhada Confortável", Price: decimal.RequireFromString("139.9"), ImageURL: "https://example.test/2.jpg"},
		3: {ID: 3, Title: "Tênis Adidas Duramo Lite", Price: decimal.RequireFromString("219.9"), ImageURL: "https://example.test/3.jpg"},
		7: {ID: 7, Title: "Tênis Nike Downshifter", Price: decimal.RequireFromString("99.9"), ImageURL: "https://example.test/7.jpg"},
		9: {ID: 9, Title: "Tênis Olympikus", Price: decimal.RequireFromString("10.00"), ImageURL: "https://example.test/9.jpg"},
	}
}
