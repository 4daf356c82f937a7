package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

// Format is the detected document format of an upload.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatTXT     Format = "txt"
	FormatCSV     Format = "csv"
	FormatUnknown Format = "unknown"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeTXT  = "text/plain"
	mimeCSV  = "text/csv"
)

// Browsers and client libraries are inconsistent about the DOCX MIME type.
var docxMIMETypes = map[string]bool{
	mimeDOCX: true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml": true,
	"application/docx":   true,
	"application/x-docx": true,
}

// DetectFormat classifies an upload from its declared media type and
// filename. A recognized declared type wins; otherwise the filename suffix
// decides. Client tooling frequently sends generic or missing content types,
// so the suffix is a required secondary signal, not a nicety.
func DetectFormat(contentType, filename string) Format {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case ct == mimePDF:
		return FormatPDF
	case docxMIMETypes[ct]:
		return FormatDOCX
	case ct == mimeTXT:
		return FormatTXT
	case ct == mimeCSV:
		return FormatCSV
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt":
		return FormatTXT
	case ".csv":
		return FormatCSV
	}

	return FormatUnknown
}

// Reason classifies why an extraction failed.
type Reason string

const (
	ReasonUnsupportedType Reason = "unsupported_type"
	ReasonEmptyDocument   Reason = "empty_document"
	ReasonOCRUnavailable  Reason = "ocr_unavailable"
	ReasonExtractionError Reason = "extraction_error"
)

// Error is a terminal extraction failure. Extraction is never retried; the
// reason tells the caller which guidance to surface.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func failf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Result is a successful extraction. Text is never empty or whitespace-only;
// PageCount is zero for formats without a page structure.
type Result struct {
	Text      string
	PageCount int
}

// Extractor turns uploaded bytes into plain text. It holds no per-request
// state and is safe for concurrent use.
type Extractor struct {
	ocr     OCR
	workers int
	logger  *utils.Logger
}

// New creates an Extractor. ocr may be nil when the host has no OCR engine.
func New(ocr OCR, workers int, logger *utils.Logger) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		ocr:     ocr,
		workers: workers,
		logger:  logger,
	}
}

// Extract classifies the upload and runs the matching extraction path.
// CSV is treated as plain text.
func (e *Extractor) Extract(ctx context.Context, data []byte, contentType, filename string) (*Result, error) {
	switch DetectFormat(contentType, filename) {
	case FormatPDF:
		return e.extractPDF(ctx, data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatTXT, FormatCSV:
		return extractTXT(data)
	default:
		return nil, failf(ReasonUnsupportedType,
			"unsupported file type %q. Please upload a PDF, DOCX, TXT or CSV file", contentType)
	}
}

func (e *Extractor) ocrAvailable() bool {
	return e.ocr != nil && e.ocr.Available()
}
