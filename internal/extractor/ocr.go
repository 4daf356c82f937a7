package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

// OCR is the optical character recognition capability. Whether an engine is
// installed is a runtime fact of the host, so the pipeline probes
// availability instead of assuming it, and tests inject fakes.
type OCR interface {
	Available() bool
	Run(ctx context.Context, pdfData []byte) (string, error)
}

// ErrNoImages is returned by an OCR implementation when the PDF yields no
// page images to recognize.
var ErrNoImages = errors.New("no page images in document")

// runOCR invokes the configured engine and maps its outcome onto the failure
// taxonomy. pages may be zero when the page count is unknown.
func (e *Extractor) runOCR(ctx context.Context, data []byte, pages int) (*Result, error) {
	text, err := e.ocr.Run(ctx, data)
	if err != nil {
		if errors.Is(err, ErrNoImages) {
			return nil, failf(ReasonExtractionError, "could not convert document to images")
		}
		return nil, failf(ReasonExtractionError, "OCR failed: %v", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, failf(ReasonEmptyDocument, "OCR failed to extract text; try a different format")
	}
	return &Result{Text: text, PageCount: pages}, nil
}

// Tesseract runs the tesseract binary against every page image of a PDF.
// OCR is markedly slower and lower quality than text-layer extraction and is
// only reached as a last resort.
type Tesseract struct {
	binary   string
	language string
	logger   *utils.Logger
}

// NewTesseract probes the host for a tesseract binary. When the probe fails
// the returned engine reports itself unavailable rather than erroring, so
// callers get a precise "OCR not available" failure instead of a crash.
func NewTesseract(language string, logger *utils.Logger) *Tesseract {
	binary, err := exec.LookPath("tesseract")
	if err != nil {
		logger.Warn("tesseract binary not found; OCR fallback disabled", "error", err)
		binary = ""
	}
	return &Tesseract{
		binary:   binary,
		language: language,
		logger:   logger,
	}
}

func (t *Tesseract) Available() bool {
	return t != nil && t.binary != ""
}

// Run extracts every page image from the PDF and recognizes them in page
// order, keeping only non-empty per-page results. Pages are processed
// sequentially; the underlying engine is the dominant cost either way.
func (t *Tesseract) Run(ctx context.Context, pdfData []byte) (string, error) {
	images, err := pageImages(pdfData)
	if err != nil {
		return "", fmt.Errorf("extract page images: %w", err)
	}
	if len(images) == 0 {
		return "", ErrNoImages
	}

	var parts []string
	for _, img := range images {
		text, err := t.recognize(ctx, img)
		if err != nil {
			t.logger.Warn("OCR failed for page image", "page", img.page, "error", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

type pageImage struct {
	page     int
	fileType string
	data     []byte
}

// pageImages pulls the embedded image of each page. For scanned PDFs, the
// class of document OCR exists for, each page is a single full-page scan.
func pageImages(pdfData []byte) ([]pageImage, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.ExtractImagesRaw(bytes.NewReader(pdfData), nil, conf)
	if err != nil {
		return nil, err
	}

	var images []pageImage
	for _, byObjNr := range pages {
		objNrs := make([]int, 0, len(byObjNr))
		for nr := range byObjNr {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)
		for _, nr := range objNrs {
			img := byObjNr[nr]
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image on page %d: %w", img.PageNr, err)
			}
			images = append(images, pageImage{
				page:     img.PageNr,
				fileType: img.FileType,
				data:     data,
			})
		}
	}

	sort.SliceStable(images, func(i, j int) bool { return images[i].page < images[j].page })
	return images, nil
}

// recognize feeds one page image through the tesseract binary.
func (t *Tesseract) recognize(ctx context.Context, img pageImage) (string, error) {
	f, err := os.CreateTemp("", "ocr-page-*."+img.fileType)
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(img.data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, t.binary, f.Name(), "stdout", "-l", t.language)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
