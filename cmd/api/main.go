package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"shopscript-storefront/internal/config"
	"shopscript-storefront/internal/server"
	"shopscript-storefront/internal/storage"
	"shopscript-storefront/internal/ui"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	// The backend serializes money as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	kv, err := openStateStore(cfg)
	if err != nil {
		log.Fatal("state store init: ", err)
	}

	sessions := ui.NewManager(&cfg.Backend, kv)
	srv := server.NewServer(sessions)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}

func openStateStore(cfg *config.Config) (storage.KV, error) {
	switch cfg.Storage.Driver {
	case "redis":
		return storage.NewRedisKV(context.Background(), cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
	case "memory":
		return storage.NewMemoryKV(), nil
	default:
		return storage.NewSqliteKV(cfg.Storage.Path)
	}
}
