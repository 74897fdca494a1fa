package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPITimeout = 3 * time.Second

var (
	ErrAPINotFound    = errors.New("api resource not found")
	ErrAPIBadStatus   = errors.New("api bad status")
	ErrAPIUnavailable = errors.New("api unavailable")
)

// APIClient talks to the catalog API. It serves as both the
// InventoryService and the CatalogService of a Store.
type APIClient struct {
	BaseURL string
	Client  *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	return &APIClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) GetStock(ctx context.Context, productID int64) (Stock, error) {
	var s Stock
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", productID), &s); err != nil {
		return Stock{}, err
	}
	return s, nil
}

func (c *APIClient) GetProduct(ctx context.Context, productID int64) (Product, error) {
	var p Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: empty product %d", ErrAPIBadStatus, productID)
	}
	return p, nil
}

// Ping checks the API's readiness endpoint.
func (c *APIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status=%d", ErrAPIBadStatus, resp.StatusCode)
	}
	return nil
}

func (c *APIClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrAPINotFound, path)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrAPIBadStatus, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrAPIBadStatus, path, err)
	}
	return nil
}
