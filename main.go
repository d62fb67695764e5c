package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ekta-storefront/app"
	"ekta-storefront/config"
	"ekta-storefront/db"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.InitDB(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open key-value store: %v", err)
	}

	storefront, err := app.New(cfg, app.Dependencies{DB: db.DB, Store: store})
	if err != nil {
		closeStore()
		log.Fatal(err)
	}
	storefront.OnClose(closeStore)

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           storefront.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown: %v", err)
	}
	if err := storefront.Close(); err != nil {
		log.Printf("⚠️  Storefront close: %v", err)
	}
}
