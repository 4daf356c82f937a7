package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Minimal slice of the WordprocessingML schema: paragraphs hold runs, runs
// hold text nodes. Everything else in document.xml is ignored.
type wordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text string `xml:"t"`
}

// extractDOCX concatenates all paragraph text in document order,
// newline-joined. A DOCX file is a ZIP container with the document body at
// word/document.xml.
func extractDOCX(data []byte) (*Result, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, failf(ReasonExtractionError, "failed to read DOCX as ZIP: %v", err)
	}

	var documentFile *zip.File
	for _, file := range zipReader.File {
		if file.Name == "word/document.xml" {
			documentFile = file
			break
		}
	}
	if documentFile == nil {
		return nil, failf(ReasonExtractionError, "document.xml not found in DOCX")
	}

	xmlFile, err := documentFile.Open()
	if err != nil {
		return nil, failf(ReasonExtractionError, "failed to open document.xml: %v", err)
	}
	defer xmlFile.Close()

	xmlData, err := io.ReadAll(xmlFile)
	if err != nil {
		return nil, failf(ReasonExtractionError, "failed to read document.xml: %v", err)
	}

	var doc wordDocument
	if err := xml.Unmarshal(xmlData, &doc); err != nil {
		return nil, failf(ReasonExtractionError, "failed to parse document.xml: %v", err)
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, run := range para.Runs {
			b.WriteString(run.Text)
		}
		paragraphs = append(paragraphs, b.String())
	}

	text := strings.TrimSpace(strings.Join(paragraphs, "\n"))
	if text == "" {
		return nil, failf(ReasonEmptyDocument, "no text could be extracted from DOCX")
	}
	return &Result{Text: text}, nil
}
