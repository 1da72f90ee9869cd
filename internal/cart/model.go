package cart

import "github.com/shopspring/decimal"

type Item struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	Amount   int             `json:"amount"`
}

// Subtotal is price times amount.
func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Amount)))
}

// Cart is ordered by first insertion. Product ids are unique and every
// amount is at least 1.
type Cart []Item

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of distinct products, not the sum of amounts.
func (c Cart) Count() int { return len(c) }

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) index(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Find returns the line for productID, if present.
func (c Cart) Find(productID int) (Item, bool) {
	if i := c.index(productID); i >= 0 {
		return c[i], true
	}
	return Item{}, false
}

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

type UpdateProductAmount struct {
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}
