package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ err error }

func (r failingRepo) Product(context.Context, int) (Product, error) { return Product{}, r.err }
func (r failingRepo) Products(context.Context) ([]Product, error) { return nil, r.err }
func (r failingRepo) Stock(context.Context, int) (Stock, error) { return Stock{}, r.err }
func (r failingRepo) SetStock(context.Context, int, int) error { return r.err }

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRouter(repo Repository) http.Handler {
	return NewRouter(NewHandler(repo, quietLogger()))
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, rdr))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(NewMemoryRepository(Fixture{})), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetStock(t *testing.T) {
	router := newTestRouter(NewMemoryRepository(DefaultFixture()))

	tests := map[string]struct {
		path     string
		wantCode int
		wantBody string
	}{
		"known":     {path: "/stock/1", wantCode: http.StatusOK, wantBody: `{"id":1,"amount":3}`},
		"unknown":   {path: "/stock/99", wantCode: http.StatusNotFound, wantBody: `{}`},
		"not a num": {path: "/stock/abc", wantCode: http.StatusBadRequest, wantBody: `{"error":"invalid id"}`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestGetProduct(t *testing.T) {
	router := newTestRouter(NewMemoryRepository(DefaultFixture()))

	rec := serve(router, http.MethodGet, "/products/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 3, p.ID)
	assert.Equal(t, "Tênis Adidas Duramo Lite 2.0", p.Title)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("219.9")))

	rec = serve(router, http.MethodGet, "/products/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	router := newTestRouter(NewMemoryRepository(DefaultFixture()))

	rec := serve(router, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ps []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
	require.Len(t, ps, 6)
	for i, p := range ps {
		assert.Equal(t, i+1, p.ID)
	}
}

func TestAdjustStock(t *testing.T) {
	repo := NewMemoryRepository(DefaultFixture())
	router := newTestRouter(repo)

	rec := serve(router, http.MethodPut, "/stock/2", `{"amount":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"amount":0}`, rec.Body.String())

	s, err := repo.Stock(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Amount)

	for _, body := range []string{`{"amount":-1}`, `{}`, `nope`} {
		rec = serve(router, http.MethodPut, "/stock/2", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRepositoryErrorsAreInternal(t *testing.T) {
	router := newTestRouter(failingRepo{err: errors.New("db down")})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/stock/1", ""},
		{http.MethodGet, "/products/1", ""},
		{http.MethodGet, "/products", ""},
		{http.MethodPut, "/stock/1", `{"amount":2}`},
	} {
		rec := serve(router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tc.path)
	}
}

func TestDecodeFixture(t *testing.T) {
	f, err := DecodeFixture(strings.NewReader(`{"products":[{"id":1,"title":"x","price":10.5,"imageUrl":"y"}],"stock":[{"id":1,"amount":2}]}`))
	require.NoError(t, err)
	require.Len(t, f.Products, 1)
	assert.True(t, f.Products[0].Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, Stock{ProductID: 1, Amount: 2}, f.Stock[0])

	_, err = DecodeFixture(strings.NewReader(`{"stock":[{"id":1,"amount":-2}]}`))
	require.Error(t, err)

	_, err = DecodeFixture(strings.NewReader(`[`))
	require.Error(t, err)
}
