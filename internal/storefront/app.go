package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

const (
	readyTimeout = 2 * time.Second

	defaultMutationsPerMinute = 120
	defaultSessionsPerMinute  = 30
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// CatalogProxy serves /products and /stock when set.
	CatalogProxy http.Handler
	// Storage and Catalog are probed by /readyz when set.
	Storage Pinger
	Catalog Pinger

	MutationsPerMinute int
	// SessionsPerMinute limits POST /session per client IP.
	SessionsPerMinute int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := kit.NewRouter(kit.RouterDeps{
		Log:            deps.Log,
		Service:        deps.Service,
		Registry:       deps.Registry,
		MetricsEnabled: deps.MetricsEnabled,
		MetricsToken:   deps.MetricsToken,
	})

	setupRoutes(r, s, deps)
	return r
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))

	if deps.CatalogProxy != nil {
		r.Handle("/products", deps.CatalogProxy)
		r.Handle("/products/*", deps.CatalogProxy)
		r.Handle("/stock/*", deps.CatalogProxy)
	}

	mutations := kit.NewRateLimiter(orDefault(deps.MutationsPerMinute, defaultMutationsPerMinute), time.Minute)
	sessions := kit.NewRateLimiter(orDefault(deps.SessionsPerMinute, defaultSessionsPerMinute), time.Minute)

	r.With(sessions.Middleware(nil)).Post("/session", s.createSession)

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(RequireSession(s.Sessions))
		cr.Get("/", s.getCart)

		cr.Group(func(mr chi.Router) {
			mr.Use(mutations.Middleware(sessionKeyOf))
			mr.Delete("/", s.clearCart)
			mr.Post("/items", s.addItem)
			mr.Put("/items/{productID}", s.updateItem)
			mr.Delete("/items/{productID}", s.removeItem)
		})
	})
}

func readyz(deps HTTPDeps) http.HandlerFunc {
	checks := []struct {
		name string
		p    Pinger
	}{
		{"storage", deps.Storage},
		{"catalog", deps.Catalog},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, c := range checks {
			if c.p == nil {
				continue
			}
			if err := c.p.Ping(ctx); err != nil {
				if deps.Log != nil {
					deps.Log.Warn("readyz failed: "+c.name, zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusServiceUnavailable, c.name+" not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
