package storefront

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"RocketShoes/internal/cart"
)

const DefaultCartIdleTTL = 30 * time.Minute

// Carts lazily opens one cart.Store per session, each persisted to its own
// slot key. Carts idle for longer than the TTL are dropped and reloaded from
// the slot on next use.
type Carts struct {
	slot      cart.Slot
	inventory cart.InventoryService
	catalog   cart.CatalogService
	notifier  cart.Notifier
	metrics   *CartMetrics
	log       *zap.Logger
	idleTTL   time.Duration
	now       func() time.Time

	loads singleflight.Group

	mu        sync.Mutex
	m         map[string]*cartEntry
	lastSweep time.Time
}

type cartEntry struct {
	store    *cart.Store
	lastUsed time.Time
}

type CartsDeps struct {
	Slot      cart.Slot
	Inventory cart.InventoryService
	Catalog   cart.CatalogService
	Notifier  cart.Notifier
	Metrics   *CartMetrics
	Log       *zap.Logger
	// IdleTTL defaults to DefaultCartIdleTTL.
	IdleTTL time.Duration
}

func NewCarts(deps CartsDeps) *Carts {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	ttl := deps.IdleTTL
	if ttl <= 0 {
		ttl = DefaultCartIdleTTL
	}
	return &Carts{
		slot:      deps.Slot,
		inventory: deps.Inventory,
		catalog:   deps.Catalog,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		log:       log,
		idleTTL:   ttl,
		now:       time.Now,
		m:         make(map[string]*cartEntry),
	}
}

// Get returns the session's cart, loading it from the slot if it is not
// open. Concurrent first requests for one session share a single load, and
// no lock is held while the slot is read.
func (c *Carts) Get(ctx context.Context, sessionID string) (*cart.Store, error) {
	if s, ok := c.lookup(sessionID); ok {
		return s, nil
	}

	v, err, _ := c.loads.Do(sessionID, func() (any, error) {
		if s, ok := c.lookup(sessionID); ok {
			return s, nil
		}
		s, err := c.open(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.m[sessionID] = &cartEntry{store: s, lastUsed: c.now()}
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Store), nil
}

// Len reports how many carts are open.
func (c *Carts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Carts) lookup(sessionID string) (*cart.Store, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictIdleLocked(now)

	e, ok := c.m[sessionID]
	if !ok {
		return nil, false
	}
	e.lastUsed = now
	return e.store, true
}

// evictIdleLocked runs at most every quarter TTL.
func (c *Carts) evictIdleLocked(now time.Time) {
	if now.Sub(c.lastSweep) < c.idleTTL/4 {
		return
	}
	c.lastSweep = now

	for id, e := range c.m {
		if now.Sub(e.lastUsed) > c.idleTTL {
			delete(c.m, id)
			c.log.Debug("cart evicted", zap.String("session_id", id))
		}
	}
}

func (c *Carts) open(ctx context.Context, sessionID string) (*cart.Store, error) {
	sessLog := c.log.With(zap.String("session_id", sessionID))
	notifier := cart.Notifiers{c.notifier}
	if c.metrics != nil {
		notifier = append(notifier, c.metrics.Notifier())
	}

	s, err := cart.New(ctx, cart.Deps{
		Inventory: c.inventory,
		Catalog:   c.catalog,
		Persister: cart.NewSlotPersister(c.slot, cart.SessionSlotKey(sessionID)),
		Notifier:  notifier,
		Log:       sessLog,
	})
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		s.Subscribe(c.metrics.ObserveCart)
	}

	sessLog.Debug("cart opened", zap.Int("items", len(s.Items())))
	return s, nil
}
