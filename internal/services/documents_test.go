package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/docanalyzer/document-analyzer-api/internal/analyzer"
	"github.com/docanalyzer/document-analyzer-api/internal/extractor"
	"github.com/docanalyzer/document-analyzer-api/internal/models"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

// fakeAnalyzer returns canned replies and records the prompts it saw.
type fakeAnalyzer struct {
	reply    string
	err      error
	entities []models.Entity
	prompts  []string
}

func (f *fakeAnalyzer) Query(ctx context.Context, prompt, text, apiKey string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeAnalyzer) ExtractEntities(ctx context.Context, text, apiKey string) ([]models.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

func newTestService(llm analyzer.Analyzer) DocumentService {
	logger := utils.NewLogger("error")
	return NewService(extractor.New(nil, 2, logger), llm, logger)
}

func TestProcessUploadText(t *testing.T) {
	svc := newTestService(&fakeAnalyzer{})

	resp, err := svc.ProcessUpload(context.Background(), &models.UploadRequest{
		File:        []byte("hello world again\n"),
		Filename:    "notes.txt",
		ContentType: "text/plain",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello world again" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.WordCount != 3 {
		t.Errorf("word count = %d, want 3", resp.WordCount)
	}
	if resp.Length != len(resp.Text) {
		t.Errorf("length = %d, want %d", resp.Length, len(resp.Text))
	}
	if resp.ContentType != "txt" {
		t.Errorf("content type = %q", resp.ContentType)
	}
}

func TestProcessUploadUnsupported(t *testing.T) {
	svc := newTestService(&fakeAnalyzer{})

	_, err := svc.ProcessUpload(context.Background(), &models.UploadRequest{
		File:        []byte{0x89, 'P', 'N', 'G'},
		Filename:    "image.png",
		ContentType: "image/png",
	})

	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %v", err)
	}
	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", appErr.StatusCode)
	}
}

func TestExtractionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		reason     extractor.Reason
		wantStatus int
	}{
		{"unsupported type", extractor.ReasonUnsupportedType, http.StatusBadRequest},
		{"empty document", extractor.ReasonEmptyDocument, http.StatusBadRequest},
		{"ocr unavailable", extractor.ReasonOCRUnavailable, http.StatusUnprocessableEntity},
		{"extraction error", extractor.ReasonExtractionError, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := extractionError(&extractor.Error{Reason: tt.reason, Message: "msg"})

			var appErr *utils.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *AppError, got %v", err)
			}
			if appErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", appErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAnalysisTasksUseDistinctPrompts(t *testing.T) {
	fake := &fakeAnalyzer{reply: "fine"}
	svc := newTestService(fake)
	ctx := context.Background()

	if _, err := svc.Summarize(ctx, "text", ""); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if _, err := svc.Skills(ctx, "text", ""); err != nil {
		t.Fatalf("Skills: %v", err)
	}
	if _, err := svc.Experience(ctx, "text", ""); err != nil {
		t.Fatalf("Experience: %v", err)
	}
	if _, err := svc.Answer(ctx, "text", "Who wrote this?", ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if len(fake.prompts) != 4 {
		t.Fatalf("got %d prompts", len(fake.prompts))
	}
	seen := map[string]bool{}
	for _, p := range fake.prompts {
		if seen[p] {
			t.Errorf("duplicate prompt across tasks: %q", p)
		}
		seen[p] = true
	}
	if !strings.Contains(fake.prompts[3], "Who wrote this?") {
		t.Errorf("question missing from QA prompt: %q", fake.prompts[3])
	}
}

func TestCompareJoinsBothDocuments(t *testing.T) {
	fake := &fakeAnalyzer{reply: "similar"}
	svc := newTestService(fake)

	resp, err := svc.Compare(context.Background(), "first doc", "second doc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Comparison != "similar" {
		t.Errorf("comparison = %q", resp.Comparison)
	}
}

func TestEntitiesParseFailureIsBadGateway(t *testing.T) {
	fake := &fakeAnalyzer{err: &analyzer.ParseError{Raw: "no json here", Msg: "no JSON array found in model response"}}
	svc := newTestService(fake)

	_, err := svc.Entities(context.Background(), "text", "")

	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %v", err)
	}
	if appErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", appErr.StatusCode)
	}
	if !strings.Contains(appErr.Message, "no json here") {
		t.Errorf("raw reply missing from message: %q", appErr.Message)
	}
}

func TestEntitiesNilBecomesEmptySlice(t *testing.T) {
	svc := newTestService(&fakeAnalyzer{entities: nil})

	resp, err := svc.Entities(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Entities == nil {
		t.Error("entities should serialize as [], not null")
	}
}
