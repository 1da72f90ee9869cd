package cart

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const DefaultStorageKey = "@shop:cart"

// EncodeSnapshot renders the cart as the JSON list kept in storage.
// An empty cart encodes as "[]".
func EncodeSnapshot(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "marshal cart")
	}
	return string(b), nil
}

// DecodeSnapshot parses a stored snapshot. Snapshots with duplicate ids or
// non-positive amounts are rejected as corrupt.
func DecodeSnapshot(raw string) (Cart, error) {
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, errors.Wrap(ErrCorruptSnapshot, err.Error())
	}

	seen := make(map[int]struct{}, len(c))
	for _, it := range c {
		if it.Amount < 1 {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "product %d has amount %d", it.ID, it.Amount)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "product %d listed twice", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
