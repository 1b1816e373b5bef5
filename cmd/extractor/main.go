package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newshub/internal/config"
	"newshub/internal/extractor"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	summarizer := extractor.NewLLMSummarizer(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.SummaryMaxTokens)
	service := extractor.NewService(cfg.FetchTimeout, summarizer)
	server := extractor.NewServer(service, cfg)

	log.Printf("Starting NewsHub extractor on port %d", cfg.ExtractorPort)
	log.Printf("Summary model: %s via %s", cfg.LLMModel, cfg.LLMAPIURL)

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
