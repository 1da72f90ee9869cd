package clients

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/cart"
)

// CatalogClient talks to the stock and product endpoints of the catalog
// service.
type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

type stockResponse struct {
	ID     int  `json:"id"`
	Amount *int `json:"amount"`
}

type productResponse struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

func (cc *CatalogClient) Stock(ctx context.Context, productID int) (cart.Stock, error) {
	var body stockResponse
	if err := cc.c.GetJSON(ctx, "/stock/"+strconv.Itoa(productID), &body); err != nil {
		return cart.Stock{}, err
	}
	if body.Amount == nil {
		return cart.Stock{}, errors.Errorf("stock for product %d: response has no amount", productID)
	}
	return cart.Stock{ProductID: productID, Amount: *body.Amount}, nil
}

// Product returns nil, nil when the catalog answers without product data.
func (cc *CatalogClient) Product(ctx context.Context, productID int) (*cart.Product, error) {
	var body productResponse
	if err := cc.c.GetJSON(ctx, "/products/"+strconv.Itoa(productID), &body); err != nil {
		return nil, err
	}
	if body.ID == 0 {
		return nil, nil
	}
	return &cart.Product{
		ID:       body.ID,
		Title:    body.Title,
		Price:    body.Price,
		ImageURL: body.ImageURL,
	}, nil
}

func (cc *CatalogClient) HealthProbe() HealthProbe {
	return HealthProbe{Name: cc.c.Name, Client: cc.c, Path: "/health"}
}
