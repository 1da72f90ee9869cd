package catalog

import "github.com/shopspring/decimal"

type Product struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

type Stock struct {
	ProductID int `json:"id"`
	Amount    int `json:"amount"`
}

// Fixture is the on-disk seed document: a products list and a stock list.
type Fixture struct {
	Products []Product `json:"products"`
	Stock    []Stock   `json:"stock"`
}
