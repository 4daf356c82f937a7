package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docanalyzer/document-analyzer-api/internal/analyzer"
	"github.com/docanalyzer/document-analyzer-api/internal/extractor"
	"github.com/docanalyzer/document-analyzer-api/internal/models"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

// Analysis task prompts. Document text travels with the request; the service
// keeps no record of it afterwards.
const (
	summarizePrompt = "Provide a concise professional summary of this document. " +
		"Identify the document type and key information. " +
		"If this is a resume, highlight education, experience, skills, and qualifications."

	keyElementsPrompt = "Extract key themes, topics, and concepts from this document. " +
		"If this is a resume, include skills, qualifications, education level, experience overview, and career highlights. " +
		"Organize the information in a clear, structured format with appropriate headings."

	skillsPrompt = "Extract and categorize all professional skills mentioned in this resume. " +
		"Group them into categories such as Technical Skills, Soft Skills, Tools & Software, Languages, etc. " +
		"For each skill, provide a confidence level (High/Medium/Low) based on how clearly it's demonstrated in the resume."

	experiencePrompt = "Analyze the work experience section of this resume. " +
		"Extract and summarize each position, including company name, job title, duration, and key responsibilities. " +
		"Calculate the total years of experience and identify the primary industry sectors."

	comparePrompt = "Compare these two documents in detail. " +
		"Identify key similarities and differences. " +
		"If one is a resume and one is a job description, analyze how well the candidate matches the job requirements. " +
		"Provide a compatibility score (0-100%) and specific recommendations."
)

type DocumentService interface {
	ProcessUpload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error)
	Summarize(ctx context.Context, text, apiKey string) (*models.SummaryResponse, error)
	KeyElements(ctx context.Context, text, apiKey string) (*models.KeyElementsResponse, error)
	Skills(ctx context.Context, text, apiKey string) (*models.SkillsResponse, error)
	Experience(ctx context.Context, text, apiKey string) (*models.ExperienceResponse, error)
	Answer(ctx context.Context, text, question, apiKey string) (*models.AnswerResponse, error)
	Compare(ctx context.Context, text1, text2, apiKey string) (*models.ComparisonResponse, error)
	Entities(ctx context.Context, text, apiKey string) (*models.EntitiesResponse, error)
}

type documentService struct {
	extractor *extractor.Extractor
	analyzer  analyzer.Analyzer
	logger    *utils.Logger
}

func NewService(ext *extractor.Extractor, llm analyzer.Analyzer, logger *utils.Logger) DocumentService {
	return &documentService{
		extractor: ext,
		analyzer:  llm,
		logger:    logger,
	}
}

func (s *documentService) ProcessUpload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	result, err := s.extractor.Extract(ctx, req.File, req.ContentType, req.Filename)
	if err != nil {
		s.logger.Warn("Text extraction failed",
			"filename", req.Filename,
			"content_type", req.ContentType,
			"error", err)
		return nil, extractionError(err)
	}

	s.logger.Info("Document processed",
		"filename", req.Filename,
		"content_type", req.ContentType,
		"text_length", len(result.Text),
		"page_count", result.PageCount)

	return &models.UploadResponse{
		Filename:    req.Filename,
		ContentType: string(extractor.DetectFormat(req.ContentType, req.Filename)),
		Text:        result.Text,
		Length:      len(result.Text),
		WordCount:   len(strings.Fields(result.Text)),
		PageCount:   result.PageCount,
	}, nil
}

// extractionError maps the extraction failure taxonomy onto HTTP semantics.
// Unsupported or empty input is the client's to fix; a missing OCR engine
// means the upload is understood but not processable on this host.
func extractionError(err error) error {
	var xerr *extractor.Error
	if !errors.As(err, &xerr) {
		return utils.NewInternalError(fmt.Sprintf("Failed to extract text from document: %v", err))
	}

	switch xerr.Reason {
	case extractor.ReasonUnsupportedType, extractor.ReasonEmptyDocument:
		return utils.NewBadRequestError(xerr.Message)
	case extractor.ReasonOCRUnavailable:
		return utils.NewUnprocessableError(xerr.Message)
	default:
		return utils.NewBadRequestError(xerr.Message)
	}
}

func (s *documentService) Summarize(ctx context.Context, text, apiKey string) (*models.SummaryResponse, error) {
	reply, err := s.query(ctx, "summarize", summarizePrompt, text, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.SummaryResponse{Summary: reply}, nil
}

func (s *documentService) KeyElements(ctx context.Context, text, apiKey string) (*models.KeyElementsResponse, error) {
	reply, err := s.query(ctx, "key_elements", keyElementsPrompt, text, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.KeyElementsResponse{KeyElements: reply}, nil
}

func (s *documentService) Skills(ctx context.Context, text, apiKey string) (*models.SkillsResponse, error) {
	reply, err := s.query(ctx, "skills", skillsPrompt, text, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.SkillsResponse{Skills: reply}, nil
}

func (s *documentService) Experience(ctx context.Context, text, apiKey string) (*models.ExperienceResponse, error) {
	reply, err := s.query(ctx, "experience", experiencePrompt, text, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.ExperienceResponse{Experience: reply}, nil
}

func (s *documentService) Answer(ctx context.Context, text, question, apiKey string) (*models.AnswerResponse, error) {
	prompt := fmt.Sprintf("Based on the document provided, answer this question: %s", question)
	reply, err := s.query(ctx, "qa", prompt, text, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.AnswerResponse{Answer: reply}, nil
}

func (s *documentService) Compare(ctx context.Context, text1, text2, apiKey string) (*models.ComparisonResponse, error) {
	combined := fmt.Sprintf("Document 1:\n%s\n\nDocument 2:\n%s", text1, text2)
	reply, err := s.query(ctx, "compare", comparePrompt, combined, apiKey)
	if err != nil {
		return nil, err
	}
	return &models.ComparisonResponse{Comparison: reply}, nil
}

func (s *documentService) Entities(ctx context.Context, text, apiKey string) (*models.EntitiesResponse, error) {
	entities, err := s.analyzer.ExtractEntities(ctx, text, apiKey)
	if err != nil {
		var perr *analyzer.ParseError
		if errors.As(err, &perr) {
			s.logger.Error("Failed to parse entity response", "error", perr.Msg, "raw", perr.Raw)
			return nil, utils.NewBadGatewayError(fmt.Sprintf("%s. Raw response: %s", perr.Msg, perr.Raw))
		}
		s.logger.Error("Entity analysis failed", "error", err)
		return nil, utils.NewInternalError("Failed to analyze document with LLM")
	}
	if entities == nil {
		entities = []models.Entity{}
	}
	return &models.EntitiesResponse{Entities: entities}, nil
}

func (s *documentService) query(ctx context.Context, task, prompt, text, apiKey string) (string, error) {
	reply, err := s.analyzer.Query(ctx, prompt, text, apiKey)
	if err != nil {
		s.logger.Error("LLM query failed", "task", task, "error", err)
		return "", utils.NewInternalError("Failed to analyze document with LLM")
	}
	s.logger.Info("Document analyzed", "task", task, "reply_length", len(reply))
	return reply, nil
}
