package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newshub/internal/cache"
	"newshub/internal/config"
	"newshub/internal/feedapi"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	cacheManager := cache.NewManager(cfg.CacheTTL)
	agg := feedapi.New(cfg.FeedSources, cfg.ItemsPerSource, cfg.FetchTimeout)
	server := feedapi.NewServer(agg, cacheManager, cfg)

	log.Printf("Starting NewsHub feed API on port %d", cfg.FeedAPIPort)
	for category, urls := range cfg.FeedSources {
		log.Printf("Category %s: %d feed(s) configured", category, len(urls))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		cancel()
	}()

	if err := server.StartWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Failed to start server:", err)
	}
}
