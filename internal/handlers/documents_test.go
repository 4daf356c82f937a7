package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/docanalyzer/document-analyzer-api/internal/models"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

const testMaxFileSize = 1 << 20

type fakeService struct {
	uploadResp *models.UploadResponse
	uploadErr  error
}

func (f *fakeService) ProcessUpload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadResp, nil
}

func (f *fakeService) Summarize(ctx context.Context, text, apiKey string) (*models.SummaryResponse, error) {
	return &models.SummaryResponse{Summary: "summary of: " + text}, nil
}

func (f *fakeService) KeyElements(ctx context.Context, text, apiKey string) (*models.KeyElementsResponse, error) {
	return &models.KeyElementsResponse{KeyElements: "elements"}, nil
}

func (f *fakeService) Skills(ctx context.Context, text, apiKey string) (*models.SkillsResponse, error) {
	return &models.SkillsResponse{Skills: "skills"}, nil
}

func (f *fakeService) Experience(ctx context.Context, text, apiKey string) (*models.ExperienceResponse, error) {
	return &models.ExperienceResponse{Experience: "experience"}, nil
}

func (f *fakeService) Answer(ctx context.Context, text, question, apiKey string) (*models.AnswerResponse, error) {
	return &models.AnswerResponse{Answer: "answer to: " + question}, nil
}

func (f *fakeService) Compare(ctx context.Context, text1, text2, apiKey string) (*models.ComparisonResponse, error) {
	return &models.ComparisonResponse{Comparison: "comparison"}, nil
}

func (f *fakeService) Entities(ctx context.Context, text, apiKey string) (*models.EntitiesResponse, error) {
	return &models.EntitiesResponse{Entities: []models.Entity{{Entity: "Ada", Type: "PERSON"}}}, nil
}

func newTestHandler(svc *fakeService) *DocumentHandler {
	return NewDocumentHandler(svc, testMaxFileSize, utils.NewLogger("error"))
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadDocument(t *testing.T) {
	h := newTestHandler(&fakeService{
		uploadResp: &models.UploadResponse{Filename: "cv.txt", Text: "hello", Length: 5, WordCount: 1},
	})

	rec := httptest.NewRecorder()
	h.UploadDocument(rec, multipartUpload(t, "cv.txt", "text/plain", []byte("hello")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "hello" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestUploadDocumentRejectsOversized(t *testing.T) {
	h := newTestHandler(&fakeService{})

	req := multipartUpload(t, "big.pdf", "application/pdf", []byte("x"))
	req.ContentLength = testMaxFileSize + 1

	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too large") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUploadDocumentNoFile(t *testing.T) {
	h := newTestHandler(&fakeService{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.UploadDocument(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadDocumentEmptyFile(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.UploadDocument(rec, multipartUpload(t, "empty.txt", "text/plain", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadDocumentServiceErrorStatus(t *testing.T) {
	h := newTestHandler(&fakeService{
		uploadErr: utils.NewUnprocessableError("OCR is not available on this host"),
	})

	rec := httptest.NewRecorder()
	h.UploadDocument(rec, multipartUpload(t, "scan.pdf", "application/pdf", []byte("%PDF")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func formRequest(path string, fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAnalyzeRequiresText(t *testing.T) {
	h := newTestHandler(&fakeService{})

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"summarize", h.Summarize},
		{"key_elements", h.KeyElements},
		{"skills", h.Skills},
		{"experience", h.Experience},
		{"entities", h.Entities},
		{"qa", h.Answer},
	}

	for _, ep := range endpoints {
		t.Run(ep.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ep.handler(rec, formRequest("/api/v1/analyze/"+ep.name, url.Values{}))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.Summarize(rec, formRequest("/api/v1/analyze/summarize", url.Values{"text": {"doc body"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary != "summary of: doc body" {
		t.Errorf("summary = %q", resp.Summary)
	}
}

func TestAnswerRequiresQuestion(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.Answer(rec, formRequest("/api/v1/analyze/qa", url.Values{"text": {"doc"}}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCompareRequiresBothTexts(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.Compare(rec, formRequest("/api/v1/analyze/compare", url.Values{"text1": {"only one"}}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEntitiesResponseShape(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := httptest.NewRecorder()
	h.Entities(rec, formRequest("/api/v1/analyze/entities", url.Values{"text": {"Ada"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.EntitiesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entities) != 1 || resp.Entities[0].Type != "PERSON" {
		t.Errorf("entities = %+v", resp.Entities)
	}
}
