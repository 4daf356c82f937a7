package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// pdfStrategy is one attempt in the text-layer fallback chain. Strategies
// are tried in order until one produces non-empty text.
type pdfStrategy struct {
	name string
	run  func() (string, error)
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*Result, error) {
	reader, pages, err := openPDF(data)
	if err != nil {
		return e.recoverWithOCR(ctx, data, fmt.Sprintf("failed to parse PDF: %v", err))
	}
	if pages == 0 {
		return nil, failf(ReasonEmptyDocument, "PDF contains no pages")
	}

	chain := []pdfStrategy{
		{"text-layer", func() (string, error) { return e.textLayerParallel(ctx, reader, pages) }},
		{"text-layer-per-page", func() (string, error) { return textLayerSequential(reader, pages) }},
	}

	var lastErr error
	for _, s := range chain {
		text, err := s.run()
		if err != nil {
			lastErr = err
			if e.logger != nil {
				e.logger.Warn("PDF extraction strategy failed", "strategy", s.name, "error", err)
			}
			continue
		}
		lastErr = nil
		if text != "" {
			return &Result{Text: text, PageCount: pages}, nil
		}
	}

	if lastErr != nil {
		return e.recoverWithOCR(ctx, data, fmt.Sprintf("failed to extract PDF text: %v", lastErr))
	}

	// The text layer parsed cleanly but holds nothing. Scanned PDFs land
	// here; OCR is the only remaining strategy.
	if !e.ocrAvailable() {
		return nil, failf(ReasonOCRUnavailable,
			"no text extracted from PDF. The document appears to be scanned or contains no selectable text, and OCR is not available on this host")
	}
	return e.runOCR(ctx, data, pages)
}

// recoverWithOCR handles unexpected parse/extraction failures: when OCR is
// available it gets one attempt before the error surfaces, and a double
// failure reports both messages.
func (e *Extractor) recoverWithOCR(ctx context.Context, data []byte, msg string) (*Result, error) {
	if e.ocrAvailable() {
		res, ocrErr := e.runOCR(ctx, data, 0)
		if ocrErr == nil {
			return res, nil
		}
		return nil, failf(ReasonExtractionError, "%s; OCR fallback failed: %v", msg, ocrErr)
	}
	return nil, failf(ReasonExtractionError, "%s", msg)
}

// openPDF parses the byte stream. The pdf package panics on some malformed
// inputs, so the panic is converted into an error here.
func openPDF(data []byte) (reader *pdf.Reader, pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader, pages, err = nil, 0, fmt.Errorf("invalid PDF: %v", rec)
		}
	}()

	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, err
	}
	return reader, reader.NumPage(), nil
}

// textLayerParallel extracts every page's text layer on a bounded worker
// pool. Pages are independent and read-only; results are joined by page
// index, so completion order never affects output order.
func (e *Extractor) textLayerParallel(ctx context.Context, reader *pdf.Reader, pages int) (string, error) {
	texts, err := forEachPage(ctx, pages, e.workers, func(page int) (string, error) {
		return pageText(reader, page)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// textLayerSequential retries page by page, keeping whatever the non-failing
// pages yield. A single broken page must not sink the whole document.
func textLayerSequential(reader *pdf.Reader, pages int) (string, error) {
	texts := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		text, err := pageText(reader, page)
		if err != nil {
			continue
		}
		texts = append(texts, text)
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// forEachPage runs fn for pages 1..n on a pool of at most workers goroutines
// and returns the results in page order.
func forEachPage(ctx context.Context, n, workers int, fn func(page int) (string, error)) ([]string, error) {
	texts := make([]string, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 1; i <= n; i++ {
		page := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := fn(page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			texts[page-1] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// pageText returns one page's text layer, trimmed. GetPlainText emits a
// trailing newline per page; left in place it would double every separator
// in the positional join.
func pageText(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("text extraction panic: %v", rec)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
