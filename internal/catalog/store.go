package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Product struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetStock(ctx context.Context, id int64) (Stock, error)
}
