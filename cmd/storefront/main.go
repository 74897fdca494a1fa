package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/config"
	"RocketShoes/internal/storage"
	"RocketShoes/internal/storefront"
	"RocketShoes/pkg/kit"
)

func main() {
	service := "storefront"

	cfg, err := config.LoadStorefront()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	slot, err := storage.Open(ctx, cfg.StorageURL)
	if err != nil {
		log.Fatal("open cart storage", zap.Error(err))
	}
	defer func() { _ = slot.Close() }()

	api := cart.NewAPIClient(cfg.CatalogURL, cfg.APITimeout)

	proxy, err := storefront.NewReverseProxy(cfg.CatalogURL, log)
	if err != nil {
		log.Fatal("init catalog proxy", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	metrics := storefront.NewCartMetrics(reg)

	s := &storefront.Server{
		Carts: storefront.NewCarts(storefront.CartsDeps{
			Slot:      slot,
			Inventory: api,
			Catalog:   api,
			Notifier:  cart.LogNotifier(log),
			Metrics:   metrics,
			Log:       log,
			IdleTTL:   cfg.CartIdleTTL,
		}),
		Sessions: storefront.NewSessionMaker(cfg.SessionSecret, storefront.DefaultTTL),
		Log:      log,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:                log,
		Service:            service,
		Registry:           reg,
		MetricsEnabled:     true,
		MetricsToken:       cfg.MetricsToken,
		CatalogProxy:       proxy,
		Storage:            slot,
		Catalog:            api,
		MutationsPerMinute: cfg.MutationsPerMinute,
		SessionsPerMinute:  cfg.SessionsPerMinute,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		_ = slot.Close()
		os.Exit(1)
	}
}
