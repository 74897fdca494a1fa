package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// DefaultSlotKey is the storage key the storefront has always used.
const DefaultSlotKey = "@RocketShoes:cart"

// Slot is a single overwrite-only storage cell keyed by name.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SlotPersister keeps a cart as a JSON array of line items in one Slot key.
type SlotPersister struct {
	Slot Slot
	Key  string
}

func NewSlotPersister(slot Slot, key string) *SlotPersister {
	if key == "" {
		key = DefaultSlotKey
	}
	return &SlotPersister{Slot: slot, Key: key}
}

// SessionSlotKey names the slot for one storefront session.
func SessionSlotKey(sessionID string) string {
	return DefaultSlotKey + ":" + sessionID
}

func (p *SlotPersister) Load(ctx context.Context) ([]LineItem, error) {
	raw, ok, err := p.Slot.Get(ctx, p.Key)
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", p.Key, err)
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return []LineItem{}, nil
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

func (p *SlotPersister) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := p.Slot.Set(ctx, p.Key, b); err != nil {
		return fmt.Errorf("write slot %q: %w", p.Key, err)
	}
	return nil
}
