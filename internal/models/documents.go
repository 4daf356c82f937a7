package models

// UploadRequest carries one uploaded file through the service layer. Nothing
// is persisted; the request is the document's entire lifetime.
type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

type UploadResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Text        string `json:"text"`
	Length      int    `json:"length"`
	WordCount   int    `json:"word_count"`
	PageCount   int    `json:"page_count,omitempty"`
}

// Entity is one named entity recognized by the model, e.g.
// {"entity": "OpenAI", "type": "ORG"}.
type Entity struct {
	Entity string `json:"entity"`
	Type   string `json:"type"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type KeyElementsResponse struct {
	KeyElements string `json:"key_elements"`
}

type SkillsResponse struct {
	Skills string `json:"skills"`
}

type ExperienceResponse struct {
	Experience string `json:"experience"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

type ComparisonResponse struct {
	Comparison string `json:"comparison"`
}

type EntitiesResponse struct {
	Entities []Entity `json:"entities"`
}
