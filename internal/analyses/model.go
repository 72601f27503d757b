package analyses

import (
	"encoding/json"
	"time"
)

// OutputFile describes where a saved analysis can be fetched from.
type OutputFile struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// AnalyzeResponse is the success body of the analyze endpoints.
type AnalyzeResponse struct {
	Success    bool            `json:"success"`
	Analysis   json.RawMessage `json:"analysis"`
	OutputFile OutputFile      `json:"outputFile"`
}

// TextRequest is the body of POST /api/analyze/text.
type TextRequest struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

// HealthResponse reports provider configuration.
type HealthResponse struct {
	Status               string `json:"status"`
	OpenRouterConfigured bool   `json:"openRouterConfigured"`
	Model                string `json:"model"`
	Engine               string `json:"engine"`
}

// OutputRecord is one catalog entry for a saved analysis file.
type OutputRecord struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	StorageKey     string    `json:"storageKey"`
	Engine         string    `json:"engine"`
	Model          string    `json:"model"`
	SourceName     string    `json:"sourceName,omitempty"`
	Speakers       int       `json:"speakers"`
	Utterances     int       `json:"utterances"`
	TranscriptHash string    `json:"transcriptHash"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListResponse is the body of GET /api/analyses.
type ListResponse struct {
	Items  []OutputRecord `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
