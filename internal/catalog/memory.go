package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

//go:embed fixture.json
var defaultFixture []byte

// DefaultFixture returns the built-in product and stock seed.
func DefaultFixture() Fixture {
	f, err := DecodeFixture(bytes.NewReader(defaultFixture))
	if err != nil {
		panic("catalog: embedded fixture is invalid: " + err.Error())
	}
	return f
}

func DecodeFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Fixture{}, errors.Wrap(err, "decode catalog fixture")
	}
	for _, s := range f.Stock {
		if s.Amount < 0 {
			return Fixture{}, errors.Errorf("stock for product %d is negative", s.ProductID)
		}
	}
	return f, nil
}

type MemoryRepository struct {
	mu       sync.RWMutex
	products map[int]Product
	stock    map[int]int
}

func NewMemoryRepository(f Fixture) *MemoryRepository {
	r := &MemoryRepository{
		products: make(map[int]Product, len(f.Products)),
		stock:    make(map[int]int, len(f.Stock)),
	}
	for _, p := range f.Products {
		r.products[p.ID] = p
	}
	for _, s := range f.Stock {
		r.stock[s.ProductID] = s.Amount
	}
	return r
}

func (r *MemoryRepository) Product(_ context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepository) Products(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Stock(_ context.Context, productID int) (Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	amount, ok := r.stock[productID]
	if !ok {
		return Stock{}, ErrNotFound
	}
	return Stock{ProductID: productID, Amount: amount}, nil
}

func (r *MemoryRepository) SetStock(_ context.Context, productID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[productID] = amount
	return nil
}
