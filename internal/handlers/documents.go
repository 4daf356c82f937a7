package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/docanalyzer/document-analyzer-api/internal/models"
	"github.com/docanalyzer/document-analyzer-api/internal/services"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

type DocumentHandler struct {
	service     services.DocumentService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// UploadDocument accepts a multipart upload, enforces the size ceiling
// before extraction is attempted, and returns the extracted text.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	// Check Content-Length first to reject oversized requests early
	if r.ContentLength > h.maxFileSize {
		h.respondError(w, h.sizeLimitError())
		return
	}

	// Limit the request body size to prevent memory exhaustion
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.respondError(w, h.sizeLimitError())
			return
		}
		h.respondError(w, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.respondError(w, utils.NewInternalError("Failed to read file"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		h.respondError(w, h.sizeLimitError())
		return
	}
	if len(data) == 0 {
		h.respondError(w, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	h.logger.Info("File upload",
		"filename", header.Filename,
		"content_type", contentType,
		"size", len(data))

	req := &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}

	resp, err := h.service.ProcessUpload(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	text, apiKey, ok := h.textForm(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Summarize(r.Context(), text, apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) KeyElements(w http.ResponseWriter, r *http.Request) {
	text, apiKey, ok := h.textForm(w, r)
	if !ok {
		return
	}

	resp, err := h.service.KeyElements(r.Context(), text, apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Skills(w http.ResponseWriter, r *http.Request) {
	text, apiKey, ok := h.textForm(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Skills(r.Context(), text, apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Experience(w http.ResponseWriter, r *http.Request) {
	text, apiKey, ok := h.textForm(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Experience(r.Context(), text, apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Entities(w http.ResponseWriter, r *http.Request) {
	text, apiKey, ok := h.textForm(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Entities(r.Context(), text, apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	text, apiKey, ok := h.textForm(w, r)
	if !ok {
		return
	}

	question := r.FormValue("question")
	if strings.TrimSpace(question) == "" {
		h.respondError(w, utils.NewBadRequestError("Form field 'question' is required"))
		return
	}

	resp, err := h.service.Answer(r.Context(), text, question, apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) Compare(w http.ResponseWriter, r *http.Request) {
	text1 := r.FormValue("text1")
	text2 := r.FormValue("text2")
	if strings.TrimSpace(text1) == "" || strings.TrimSpace(text2) == "" {
		h.respondError(w, utils.NewBadRequestError("Form fields 'text1' and 'text2' are required"))
		return
	}

	resp, err := h.service.Compare(r.Context(), text1, text2, r.FormValue("api_key"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// textForm reads the common 'text' and optional 'api_key' form fields shared
// by the analysis endpoints. It writes the error response itself when the
// text is missing.
func (h *DocumentHandler) textForm(w http.ResponseWriter, r *http.Request) (text, apiKey string, ok bool) {
	text = r.FormValue("text")
	if strings.TrimSpace(text) == "" {
		h.respondError(w, utils.NewBadRequestError("Form field 'text' is required"))
		return "", "", false
	}
	return text, r.FormValue("api_key"), true
}

func (h *DocumentHandler) sizeLimitError() error {
	return utils.NewBadRequestError(
		fmt.Sprintf("File too large. Maximum size is %d MB", h.maxFileSize/(1024*1024)))
}

func (h *DocumentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *DocumentHandler) respondError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	h.logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
