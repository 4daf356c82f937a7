package router

import (
	"fmt"
	"net/http"

	"github.com/docanalyzer/document-analyzer-api/internal/handlers"
	"github.com/docanalyzer/document-analyzer-api/internal/middleware"
	"github.com/docanalyzer/document-analyzer-api/internal/services"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(docService services.DocumentService, maxFileSize int64, apiKeyConfigured bool, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	docHandler := handlers.NewDocumentHandler(docService, maxFileSize, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","api_key_configured":%t}`, apiKeyConfigured)
	}).Methods(http.MethodGet)

	// Document upload
	api.HandleFunc("/documents/upload", docHandler.UploadDocument).Methods(http.MethodPost)

	// Analysis endpoints
	api.HandleFunc("/analyze/summarize", docHandler.Summarize).Methods(http.MethodPost)
	api.HandleFunc("/analyze/key_elements", docHandler.KeyElements).Methods(http.MethodPost)
	api.HandleFunc("/analyze/skills", docHandler.Skills).Methods(http.MethodPost)
	api.HandleFunc("/analyze/experience", docHandler.Experience).Methods(http.MethodPost)
	api.HandleFunc("/analyze/entities", docHandler.Entities).Methods(http.MethodPost)
	api.HandleFunc("/analyze/qa", docHandler.Answer).Methods(http.MethodPost)
	api.HandleFunc("/analyze/compare", docHandler.Compare).Methods(http.MethodPost)

	return r
}
