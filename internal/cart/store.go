package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type InventoryService interface {
	GetStock(ctx context.Context, productID int64) (Stock, error)
}

type CatalogService interface {
	GetProduct(ctx context.Context, productID int64) (Product, error)
}

type Persister interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

type Deps struct {
	Inventory InventoryService
	Catalog   CatalogService
	Persister Persister
	Notifier  Notifier
	Log       *zap.Logger
}

type subscriber struct {
	id uint64
	fn func([]LineItem)
}

// Store owns one cart. Mutations are computed on a copy of the items,
// persisted, then swapped in, so callers see either the whole change or
// none of it. Lookups against the inventory and catalog run without any
// lock held; overlapping operations on one product are last writer wins.
type Store struct {
	inventory InventoryService
	catalog   CatalogService
	persister Persister
	notifier  Notifier
	log       *zap.Logger

	commitMu sync.Mutex

	mu      sync.RWMutex
	items   []LineItem
	subs    []subscriber
	nextSub uint64
}

// New loads the cart from its persister; an absent slot yields an empty cart.
func New(ctx context.Context, deps Deps) (*Store, error) {
	if deps.Inventory == nil || deps.Catalog == nil || deps.Persister == nil {
		return nil, errors.New("cart: inventory, catalog and persister are required")
	}

	s := &Store{
		inventory: deps.Inventory,
		catalog:   deps.Catalog,
		persister: deps.Persister,
		notifier:  deps.Notifier,
		log:       deps.Log,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	items, err := deps.Persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	s.items = cloneItems(items)
	return s, nil
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Subscribe registers fn to receive the items after every committed
// mutation. fn runs on the mutating goroutine and must not call back into
// the Store's mutations. The returned func removes the subscription.
func (s *Store) Subscribe(fn func([]LineItem)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) AddItem(ctx context.Context, productID int64) error {
	current := s.Items()
	idx := indexOf(current, productID)

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return s.reject(ctx, KindAddFailed, productID, err)
	}

	amount := 1
	if idx >= 0 {
		amount = current[idx].Amount + 1
	}
	if amount > stock.Amount {
		return s.reject(ctx, KindOutOfStock, productID, nil)
	}

	if idx >= 0 {
		current[idx].Amount = amount
	} else {
		p, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return s.reject(ctx, KindAddFailed, productID, err)
		}
		current = append(current, newLineItem(productID, p))
	}

	if err := s.commit(ctx, current); err != nil {
		return s.reject(ctx, KindAddFailed, productID, err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	current := s.Items()
	idx := indexOf(current, productID)
	if idx < 0 {
		return s.reject(ctx, KindRemoveFailed, productID, ErrNotInCart)
	}

	next := append(current[:idx], current[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return s.reject(ctx, KindRemoveFailed, productID, err)
	}
	return nil
}

// UpdateItemAmount sets the amount of an existing line item. Amounts below
// one are ignored without a notification.
func (s *Store) UpdateItemAmount(ctx context.Context, productID int64, amount int) error {
	if amount <= 0 {
		return nil
	}

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return s.reject(ctx, KindUpdateFailed, productID, err)
	}
	if amount > stock.Amount {
		return s.reject(ctx, KindOutOfStock, productID, nil)
	}

	current := s.Items()
	idx := indexOf(current, productID)
	if idx < 0 {
		return s.reject(ctx, KindUpdateFailed, productID, ErrNotInCart)
	}
	current[idx].Amount = amount

	if err := s.commit(ctx, current); err != nil {
		return s.reject(ctx, KindUpdateFailed, productID, err)
	}
	return nil
}

// Clear empties the cart and its storage slot.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.commit(ctx, []LineItem{}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Store) commit(ctx context.Context, next []LineItem) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := s.persister.Save(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = next
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(cloneItems(next))
	}
	return nil
}

func (s *Store) reject(ctx context.Context, kind Kind, productID int64, cause error) error {
	if cause != nil && !errors.Is(cause, ErrNotInCart) {
		s.log.Warn("cart operation failed",
			zap.String("kind", string(kind)),
			zap.Int64("product_id", productID),
			zap.Error(cause),
		)
	}

	s.notifier.Notify(ctx, Notification{
		Kind:      kind,
		ProductID: productID,
		Message:   Message(kind),
	})

	if cause == nil {
		return kindErrors[kind]
	}
	return fmt.Errorf("%w: %w", kindErrors[kind], cause)
}
