package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeInventory struct {
	mu    sync.Mutex
	stock map[int64]int
	err   error
	calls int
}

func (f *fakeInventory) GetStock(_ context.Context, id int64) (Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Stock{}, f.err
	}
	n, ok := f.stock[id]
	if !ok {
		return Stock{}, ErrAPINotFound
	}
	return Stock{ID: id, Amount: n}, nil
}

type fakeCatalog struct {
	products map[int64]Product
	err      error
	calls    int
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, ErrAPINotFound
	}
	return p, nil
}

type fakePersister struct {
	initial []LineItem
	saved   [][]LineItem
	saveErr error
}

func (f *fakePersister) Load(context.Context) ([]LineItem, error) {
	return cloneItems(f.initial), nil
}

func (f *fakePersister) Save(_ context.Context, items []LineItem) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, cloneItems(items))
	return nil
}

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) { r.got = append(r.got, n) }

type fixture struct {
	store     *Store
	inventory *fakeInventory
	catalog   *fakeCatalog
	persister *fakePersister
	notes     *recorder
}

func newFixture(t *testing.T, initial []LineItem, stock map[int64]int) *fixture {
	t.Helper()

	f := &fixture{
		inventory: &fakeInventory{stock: stock},
		catalog: &fakeCatalog{products: map[int64]Product{
			1: {"id": 1, "title": "Tênis de Caminhada", "price": 179.9},
			2: {"id": 2, "title": "Tênis VR", "price": 139.9},
		}},
		persister: &fakePersister{initial: initial},
		notes:     &recorder{},
	}

	s, err := New(context.Background(), Deps{
		Inventory: f.inventory,
		Catalog:   f.catalog,
		Persister: f.persister,
		Notifier:  f.notes,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.store = s
	return f
}

func item(id int64, amount int) LineItem {
	return LineItem{ProductID: id, Fields: Product{"title": "x"}, Amount: amount}
}

func assertAmounts(t *testing.T, items []LineItem, want map[int64]int) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("items=%+v want amounts %v", items, want)
	}
	for _, it := range items {
		if w, ok := want[it.ProductID]; !ok || w != it.Amount {
			t.Fatalf("product %d amount=%d want=%v", it.ProductID, it.Amount, want)
		}
	}
}

func assertNotified(t *testing.T, r *recorder, kind Kind) {
	t.Helper()
	if len(r.got) != 1 {
		t.Fatalf("notifications=%+v want one %s", r.got, kind)
	}
	if r.got[0].Kind != kind || r.got[0].Message != Message(kind) {
		t.Fatalf("notification=%+v want %s", r.got[0], kind)
	}
}

func TestAddItem_NewProductAppendsOneLineItem(t *testing.T) {
	f := newFixture(t, nil, map[int64]int{1: 3})

	if err := f.store.AddItem(context.Background(), 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items := f.store.Items()
	assertAmounts(t, items, map[int64]int{1: 1})
	if items[0].Field("title") != "Tênis de Caminhada" {
		t.Fatalf("title=%q", items[0].Field("title"))
	}
	if _, ok := items[0].Fields["id"]; ok {
		t.Fatalf("id must not be kept in display fields")
	}
	if len(f.persister.saved) != 1 {
		t.Fatalf("saves=%d", len(f.persister.saved))
	}
	if len(f.notes.got) != 0 {
		t.Fatalf("unexpected notifications %+v", f.notes.got)
	}
}

func TestAddItem_ExistingProductIncrements(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 2)}, map[int64]int{1: 5})

	if err := f.store.AddItem(context.Background(), 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	assertAmounts(t, f.store.Items(), map[int64]int{1: 3})
	if f.catalog.calls != 0 {
		t.Fatalf("catalog called %d times for an existing item", f.catalog.calls)
	}
}

func TestAddItem_OutOfStock(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 3)}, map[int64]int{1: 3})

	err := f.store.AddItem(context.Background(), 1)
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err=%v want ErrOutOfStock", err)
	}

	assertAmounts(t, f.store.Items(), map[int64]int{1: 3})
	assertNotified(t, f.notes, KindOutOfStock)
	if len(f.persister.saved) != 0 {
		t.Fatalf("persisted a rejected add")
	}
}

func TestAddItem_ZeroStockOnEmptyCart(t *testing.T) {
	f := newFixture(t, nil, map[int64]int{1: 0})

	if err := f.store.AddItem(context.Background(), 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err=%v", err)
	}
	if len(f.store.Items()) != 0 {
		t.Fatalf("cart changed: %+v", f.store.Items())
	}
	assertNotified(t, f.notes, KindOutOfStock)
}

func TestAddItem_LookupFailures(t *testing.T) {
	t.Run("stock", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.inventory.err = ErrAPIUnavailable

		err := f.store.AddItem(context.Background(), 1)
		if !errors.Is(err, ErrAddFailed) || !errors.Is(err, ErrAPIUnavailable) {
			t.Fatalf("err=%v", err)
		}
		assertNotified(t, f.notes, KindAddFailed)
	})

	t.Run("product", func(t *testing.T) {
		f := newFixture(t, nil, map[int64]int{7: 4})

		err := f.store.AddItem(context.Background(), 7)
		if !errors.Is(err, ErrAddFailed) || !errors.Is(err, ErrAPINotFound) {
			t.Fatalf("err=%v", err)
		}
		if len(f.store.Items()) != 0 {
			t.Fatalf("cart changed")
		}
		assertNotified(t, f.notes, KindAddFailed)
	})
}

func TestAddItem_PersistFailureLeavesCartUnchanged(t *testing.T) {
	f := newFixture(t, []LineItem{item(2, 1)}, map[int64]int{1: 3})
	f.persister.saveErr = errors.New("disk full")

	err := f.store.AddItem(context.Background(), 1)
	if !errors.Is(err, ErrAddFailed) {
		t.Fatalf("err=%v", err)
	}
	assertAmounts(t, f.store.Items(), map[int64]int{2: 1})
	assertNotified(t, f.notes, KindAddFailed)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 1), item(2, 4)}, nil)

	if err := f.store.RemoveItem(context.Background(), 1); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	assertAmounts(t, f.store.Items(), map[int64]int{2: 4})
	if f.inventory.calls != 0 {
		t.Fatalf("remove must not consult inventory")
	}
}

func TestRemoveItem_Absent(t *testing.T) {
	f := newFixture(t, []LineItem{item(2, 4)}, nil)

	err := f.store.RemoveItem(context.Background(), 1)
	if !errors.Is(err, ErrRemoveFailed) || !errors.Is(err, ErrNotInCart) {
		t.Fatalf("err=%v", err)
	}
	assertAmounts(t, f.store.Items(), map[int64]int{2: 4})
	assertNotified(t, f.notes, KindRemoveFailed)
	if len(f.persister.saved) != 0 {
		t.Fatalf("persisted a rejected remove")
	}
}

func TestUpdateItemAmount(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 1)}, map[int64]int{1: 5})

	if err := f.store.UpdateItemAmount(context.Background(), 1, 4); err != nil {
		t.Fatalf("UpdateItemAmount: %v", err)
	}
	assertAmounts(t, f.store.Items(), map[int64]int{1: 4})
}

func TestUpdateItemAmount_NonPositiveIsNoop(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 2)}, map[int64]int{1: 5})

	for _, amount := range []int{0, -3} {
		if err := f.store.UpdateItemAmount(context.Background(), 1, amount); err != nil {
			t.Fatalf("amount %d: err=%v", amount, err)
		}
	}

	assertAmounts(t, f.store.Items(), map[int64]int{1: 2})
	if len(f.notes.got) != 0 || f.inventory.calls != 0 || len(f.persister.saved) != 0 {
		t.Fatalf("no-op touched collaborators: notes=%d stock calls=%d saves=%d",
			len(f.notes.got), f.inventory.calls, len(f.persister.saved))
	}
}

func TestUpdateItemAmount_OutOfStock(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 2)}, map[int64]int{1: 5})

	if err := f.store.UpdateItemAmount(context.Background(), 1, 6); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err=%v", err)
	}
	assertAmounts(t, f.store.Items(), map[int64]int{1: 2})
	assertNotified(t, f.notes, KindOutOfStock)
}

func TestUpdateItemAmount_Absent(t *testing.T) {
	f := newFixture(t, nil, map[int64]int{1: 5})

	err := f.store.UpdateItemAmount(context.Background(), 1, 2)
	if !errors.Is(err, ErrUpdateFailed) || !errors.Is(err, ErrNotInCart) {
		t.Fatalf("err=%v", err)
	}
	assertNotified(t, f.notes, KindUpdateFailed)
}

func TestUpdateItemAmount_StockLookupFailure(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 2)}, nil)
	f.inventory.err = ErrAPIBadStatus

	if err := f.store.UpdateItemAmount(context.Background(), 1, 2); !errors.Is(err, ErrUpdateFailed) {
		t.Fatalf("err=%v", err)
	}
	assertNotified(t, f.notes, KindUpdateFailed)
}

func TestItemsReturnsCopy(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 2)}, nil)

	items := f.store.Items()
	items[0].Amount = 99

	assertAmounts(t, f.store.Items(), map[int64]int{1: 2})
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, nil, map[int64]int{1: 3, 2: 3})

	var seen [][]LineItem
	unsubscribe := f.store.Subscribe(func(items []LineItem) { seen = append(seen, items) })

	ctx := context.Background()
	_ = f.store.AddItem(ctx, 1)
	_ = f.store.RemoveItem(ctx, 2) // rejected, not published
	_ = f.store.AddItem(ctx, 2)

	if len(seen) != 2 {
		t.Fatalf("published %d changes, want 2", len(seen))
	}
	assertAmounts(t, seen[1], map[int64]int{1: 1, 2: 1})

	unsubscribe()
	unsubscribe()
	_ = f.store.AddItem(ctx, 1)
	if len(seen) != 2 {
		t.Fatalf("published after unsubscribe")
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t, []LineItem{item(1, 2), item(2, 1)}, nil)

	if err := f.store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(f.store.Items()) != 0 {
		t.Fatalf("items=%+v", f.store.Items())
	}
	last := f.persister.saved[len(f.persister.saved)-1]
	if last == nil || len(last) != 0 {
		t.Fatalf("saved=%#v want empty non-nil slice", last)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(context.Background(), Deps{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestKindOf(t *testing.T) {
	f := newFixture(t, nil, map[int64]int{1: 0})

	err := f.store.AddItem(context.Background(), 1)
	kind, ok := KindOf(err)
	if !ok || kind != KindOutOfStock {
		t.Fatalf("kind=%q ok=%v", kind, ok)
	}
	if _, ok := KindOf(errors.New("other")); ok {
		t.Fatalf("unrelated error classified")
	}
}
