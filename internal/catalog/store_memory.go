package catalog

import (
	"context"
	"sort"
	"sync"
)

const imageBase = "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/"

type MemStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	stock    map[int64]int
}

func NewMemStore(products []Product, stock []Stock) *MemStore {
	s := &MemStore{
		products: make(map[int64]Product, len(products)),
		stock:    make(map[int64]int, len(stock)),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, st := range stock {
		s.stock[st.ID] = st.Amount
	}
	return s
}

// DemoProducts and DemoStock are the storefront's demo sneakers.
func DemoProducts() []Product {
	return []Product{
		{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: imageBase + "tenis1.jpg"},
		{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: imageBase + "tenis2.jpg"},
		{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: imageBase + "tenis3.jpg"},
		{ID: 4, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: imageBase + "tenis2.jpg"},
		{ID: 5, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: imageBase + "tenis2.jpg"},
		{ID: 6, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: imageBase + "tenis3.jpg"},
	}
}

func DemoStock() []Stock {
	return []Stock{
		{ID: 1, Amount: 3},
		{ID: 2, Amount: 5},
		{ID: 3, Amount: 2},
		{ID: 4, Amount: 1},
		{ID: 5, Amount: 5},
		{ID: 6, Amount: 10},
	}
}

func NewSeededStore() *MemStore {
	return NewMemStore(DemoProducts(), DemoStock())
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetProduct(ctx context.Context, id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) GetStock(ctx context.Context, id int64) (Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.stock[id]
	if !ok {
		return Stock{}, ErrNotFound
	}
	return Stock{ID: id, Amount: n}, nil
}

// SetStock replaces the available amount for a product.
func (s *MemStore) SetStock(id int64, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = amount
}
