package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newshub/internal/api"
	"newshub/internal/cache"
	"newshub/internal/config"
	"newshub/internal/extractor"
	"newshub/internal/feed"
	"newshub/internal/poller"
	"newshub/internal/refresher"
	"newshub/internal/storage"

	_ "newshub/docs"
)

func main() {
	// Load configuration
	config.LoadEnv()
	cfg := config.Load()

	// Initialize cache for hot data
	cacheManager := cache.NewManager(cfg.CacheTTL)

	// Initialize persistent storage
	store, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}
	defer store.Close()

	// Upstream service clients
	feedClient := feed.NewClient(cfg.FeedAPIURL, cfg.RequestTimeout)
	extractorClient := extractor.NewClient(cfg.ExtractorURL, cfg.RequestTimeout)

	// Refresh pipeline and background scheduler
	ref := refresher.New(store, feedClient, cacheManager, cfg.ArticleRetention, cfg.CategoryDelay)
	backgroundPoller := poller.New(ref, cfg.RefreshInterval)
	backgroundPoller.Start()

	// Initialize API server
	server := api.NewServer(store, cacheManager, ref, backgroundPoller, extractorClient, cfg)

	log.Printf("Starting NewsHub worker on port %d", cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Cache TTL: %v", cfg.CacheTTL)
	log.Printf("Article retention: %v", cfg.ArticleRetention)
	log.Printf("Background refresh interval: %v", cfg.RefreshInterval)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		backgroundPoller.Stop()
		cancel()
	}()

	if err := server.StartWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Failed to start server:", err)
	}
}
