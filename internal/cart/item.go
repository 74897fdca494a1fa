package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Product is the opaque product document served by the catalog API.
// Numbers are kept as json.Number so they round-trip unchanged.
type Product map[string]any

type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// LineItem is one product in the cart. It is stored as a flat JSON object:
// the product fields plus "id" and "amount".
type LineItem struct {
	ProductID int64
	Fields    Product
	Amount    int
}

var ErrCorruptCart = errors.New("corrupt cart data")

const (
	fieldID     = "id"
	fieldAmount = "amount"
)

func newLineItem(productID int64, p Product) LineItem {
	fields := make(Product, len(p))
	for k, v := range p {
		if k == fieldID || k == fieldAmount {
			continue
		}
		fields[k] = v
	}
	return LineItem{ProductID: productID, Fields: fields, Amount: 1}
}

// Field returns a display field as a string, or "" when absent.
func (it LineItem) Field(name string) string {
	v, ok := it.Fields[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (it LineItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Fields)+2)
	for k, v := range it.Fields {
		out[k] = v
	}
	out[fieldID] = it.ProductID
	out[fieldAmount] = it.Amount
	return json.Marshal(out)
}

func (it *LineItem) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: null line item", ErrCorruptCart)
	}

	id, err := numberField(raw, fieldID)
	if err != nil {
		return err
	}
	amount, err := numberField(raw, fieldAmount)
	if err != nil {
		return err
	}
	delete(raw, fieldID)
	delete(raw, fieldAmount)

	*it = LineItem{ProductID: id, Fields: Product(raw), Amount: int(amount)}
	return nil
}

func numberField(m map[string]any, key string) (int64, error) {
	n, ok := m[key].(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: %q missing or not a number", ErrCorruptCart, key)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrCorruptCart, key, err)
	}
	return v, nil
}

func validateItems(items []LineItem) error {
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if it.Amount < 1 {
			return fmt.Errorf("%w: product %d has amount %d", ErrCorruptCart, it.ProductID, it.Amount)
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("%w: duplicate product %d", ErrCorruptCart, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func indexOf(items []LineItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
