package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/docanalyzer/document-analyzer-api/internal/models"
)

const entitiesPrompt = "Extract named entities from the given text. " +
	"Categorize them as PERSON, ORGANIZATION (ORG), GEOGRAPHICAL LOCATION (GEO), and DATE. " +
	"For a resume, be sure to include the candidate name, companies, institutions, locations, and dates. " +
	"Return results ONLY in valid JSON format as an array of objects with 'entity' and 'type' properties:\n" +
	`[{"entity": "Elon Musk", "type": "PERSON"}, {"entity": "OpenAI", "type": "ORG"}]`

// ParseError reports a model reply that could not be turned into entities.
// Raw carries the reply so callers can surface it for debugging.
type ParseError struct {
	Raw string
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

// ExtractEntities asks the model for named entities and decodes the JSON
// array out of its free-form reply.
func (a *openRouterClient) ExtractEntities(ctx context.Context, text, apiKey string) ([]models.Entity, error) {
	reply, err := a.Query(ctx, entitiesPrompt, text, apiKey)
	if err != nil {
		return nil, err
	}
	return parseEntities(reply)
}

// parseEntities locates the first JSON array in a reply. Models wrap output
// in prose or markdown fences often enough that decoding the raw reply
// directly is the exception, not the rule.
func parseEntities(reply string) ([]models.Entity, error) {
	content := stripCodeFence(reply)

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, &ParseError{Raw: reply, Msg: "no JSON array found in model response"}
	}

	var entities []models.Entity
	if err := json.Unmarshal([]byte(content[start:end+1]), &entities); err != nil {
		return nil, &ParseError{Raw: reply, Msg: "failed to parse entity recognition response: " + err.Error()}
	}
	return entities, nil
}

// stripCodeFence removes a surrounding markdown code block if present.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if nl := strings.Index(content, "\n"); nl >= 0 {
		content = content[nl+1:]
	}
	if end := strings.LastIndex(content, "```"); end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}
