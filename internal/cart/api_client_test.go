package cart

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAPITS(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/stock/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"amount":3}`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"title":"Tênis","price":179.9,"image":"tenis1.jpg"}`))
	})
	mux.HandleFunc("/stock/500", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/stock/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestAPIClient_GetStock(t *testing.T) {
	ts := newAPITS(t)
	c := NewAPIClient(ts.URL+"/", time.Second)

	st, err := c.GetStock(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if st.ID != 1 || st.Amount != 3 {
		t.Fatalf("stock=%+v", st)
	}
}

func TestAPIClient_GetProductKeepsFields(t *testing.T) {
	ts := newAPITS(t)
	c := NewAPIClient(ts.URL, time.Second)

	p, err := c.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	it := newLineItem(1, p)
	if it.Field("title") != "Tênis" || it.Field("price") != "179.9" || it.Field("image") != "tenis1.jpg" {
		t.Fatalf("fields=%v", it.Fields)
	}
}

func TestAPIClient_Errors(t *testing.T) {
	ts := newAPITS(t)
	c := NewAPIClient(ts.URL, time.Second)
	ctx := context.Background()

	if _, err := c.GetStock(ctx, 2); !errors.Is(err, ErrAPINotFound) {
		t.Fatalf("missing: err=%v", err)
	}
	if _, err := c.GetStock(ctx, 500); !errors.Is(err, ErrAPIBadStatus) {
		t.Fatalf("500: err=%v", err)
	}

	down := NewAPIClient("http://127.0.0.1:1", time.Second)
	if _, err := down.GetProduct(ctx, 1); !errors.Is(err, ErrAPIUnavailable) {
		t.Fatalf("down: err=%v", err)
	}
}

func TestAPIClient_Timeout(t *testing.T) {
	ts := newAPITS(t)
	c := NewAPIClient(ts.URL, 50*time.Millisecond)

	var st Stock
	err := c.get(context.Background(), "/stock/slow", &st)
	if !errors.Is(err, ErrAPIUnavailable) {
		t.Fatalf("err=%v", err)
	}
}
