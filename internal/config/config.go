package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

type Config struct {
	Port     string
	LogLevel string

	// OpenRouter
	OpenRouterAPIKey string
	OpenRouterModel  string

	// Upload and prompt limits
	MaxFileSize      int64
	MaxDocumentChars int

	// Extraction
	ExtractWorkers int
	OCRLanguage    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
		MaxFileSize:      getEnvInt64("MAX_FILE_SIZE", 10*1024*1024),
		MaxDocumentChars: getEnvInt("MAX_DOCUMENT_CHARS", 25000),
		ExtractWorkers:   getEnvInt("EXTRACT_WORKERS", runtime.GOMAXPROCS(0)),
		OCRLanguage:      getEnv("OCR_LANGUAGE", "eng"),
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if cfg.MaxDocumentChars <= 0 {
		return nil, fmt.Errorf("MAX_DOCUMENT_CHARS must be positive")
	}
	if cfg.ExtractWorkers < 1 {
		cfg.ExtractWorkers = 1
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
