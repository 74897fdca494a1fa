package storefront

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/catalog"
	"RocketShoes/internal/storage"
)

func newTestCarts(t *testing.T, ttl time.Duration) (*Carts, *time.Time) {
	t.Helper()

	h := catalog.NewHandler(&catalog.Server{Store: catalog.NewSeededStore()}, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	api := cart.NewAPIClient(ts.URL, time.Second)
	c := NewCarts(CartsDeps{
		Slot:      storage.NewMemSlot(),
		Inventory: api,
		Catalog:   api,
		IdleTTL:   ttl,
	})

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCarts_SameSessionSameStore(t *testing.T) {
	c, _ := newTestCarts(t, time.Hour)
	ctx := context.Background()

	a, err := c.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := c.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Fatalf("expected the open cart to be reused")
	}
	if n := c.Len(); n != 1 {
		t.Fatalf("open carts=%d", n)
	}
}

func TestCarts_EvictsIdleAndReloadsFromSlot(t *testing.T) {
	c, now := newTestCarts(t, 10*time.Minute)
	ctx := context.Background()

	first, err := c.Get(ctx, "idle")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := first.AddItem(ctx, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	for i := 0; i < 50; i++ {
		if _, err := c.Get(ctx, fmt.Sprintf("other-%d", i)); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}

	*now = now.Add(5 * time.Minute)
	if _, err := c.Get(ctx, "active"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	*now = now.Add(6 * time.Minute)
	if _, err := c.Get(ctx, "active"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n := c.Len(); n != 1 {
		t.Fatalf("open carts after idle TTL=%d, want 1", n)
	}

	again, err := c.Get(ctx, "idle")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again == first {
		t.Fatalf("evicted cart must be reopened")
	}
	items := again.Items()
	if len(items) != 1 || items[0].ProductID != 1 || items[0].Amount != 1 {
		t.Fatalf("reloaded items=%+v", items)
	}
}

func TestCarts_ConcurrentFirstGetSharesStore(t *testing.T) {
	c, _ := newTestCarts(t, time.Hour)
	ctx := context.Background()

	const n = 16
	got := make([]*cart.Store, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := c.Get(ctx, "shared")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			got[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("goroutine %d got a different store", i)
		}
	}
}
