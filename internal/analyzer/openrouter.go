package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docanalyzer/document-analyzer-api/internal/models"
	"github.com/docanalyzer/document-analyzer-api/internal/utils"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

	systemPrompt = "You are an expert document analyzer specializing in resumes and professional documents. " +
		"Provide detailed, accurate, and helpful analysis."

	truncationNote = "Note: The document was truncated due to length constraints."
)

// Analyzer sends a task prompt plus document text to the hosted LLM and
// returns the model's free-text reply.
type Analyzer interface {
	Query(ctx context.Context, prompt, text, apiKey string) (string, error)
	ExtractEntities(ctx context.Context, text, apiKey string) ([]models.Entity, error)
}

type openRouterClient struct {
	apiKey   string
	model    string
	baseURL  string
	maxChars int
	logger   *utils.Logger
	client   *http.Client
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type choice struct {
	Message message `json:"message"`
}

// NewOpenRouterClient creates the production Analyzer. maxChars bounds how
// much document text is sent with any single prompt.
func NewOpenRouterClient(apiKey, model string, maxChars int, logger *utils.Logger) Analyzer {
	return &openRouterClient{
		apiKey:   apiKey,
		model:    model,
		baseURL:  defaultBaseURL,
		maxChars: maxChars,
		logger:   logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Query sends prompt and document text to the model. Text above the
// character budget is cut off and the prompt gains a truncation note, so
// answers are never silently based on partial content. An apiKey supplied by
// the request overrides the configured one.
func (a *openRouterClient) Query(ctx context.Context, prompt, text, apiKey string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no content to process")
	}

	if runes := []rune(text); len(runes) > a.maxChars {
		text = string(runes[:a.maxChars])
		prompt = prompt + "\n\n" + truncationNote
	}

	key := a.apiKey
	if apiKey != "" {
		key = apiKey
	}

	reqBody := chatRequest{
		Model: a.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("%s\n\nDocument Text:\n%s", prompt, text)},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("OpenRouter API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
