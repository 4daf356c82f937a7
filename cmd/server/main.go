package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docanalyzer/document-analyzer-api/internal/analyzer"
	"github.com/docanalyzer/document-analyzer-api/internal/config"
	"github.com/docanalyzer/document-analyzer-api/internal/extractor"
	"github.com/docanalyzer/document-analyzer-api/internal/router"
	"github.com/docanalyzer/document-analyzer-api/internal/services"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Probe the host for an OCR engine; extraction degrades gracefully
	// without one.
	ocr := extractor.NewTesseract(cfg.OCRLanguage, logger)
	logger.Info("OCR capability", "available", ocr.Available(), "language", cfg.OCRLanguage)

	ext := extractor.New(ocr, cfg.ExtractWorkers, logger)
	llm := analyzer.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.MaxDocumentChars, logger)
	docService := services.NewService(ext, llm, logger)

	// Setup HTTP router
	handler := router.NewRouter(docService, cfg.MaxFileSize, cfg.OpenRouterAPIKey != "", logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "model", cfg.OpenRouterModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
