// Package llm turns a transcript into an analysis by prompting a chat model.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured means no API key is available for the provider.
	ErrNotConfigured = errors.New("LLM provider not configured")
	// ErrPromptLoad wraps failures reading the system prompt files.
	ErrPromptLoad = errors.New("failed to load system prompt")
	// ErrUpstreamAPI wraps transport failures, non-2xx replies and empty replies.
	ErrUpstreamAPI = errors.New("LLM API request failed")
	// ErrUpstreamParse wraps replies that are not a JSON object matching the schema.
	ErrUpstreamParse = errors.New("failed to parse JSON response from LLM")
)

// Client sends one system and one user message and returns the reply text.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

// UserPromptSuffix is appended to every transcript sent to the model.
const UserPromptSuffix = "\n\n---\n\nIMPORTANT: Return ONLY valid JSON. Do not include any markdown formatting, explanations, or text outside the JSON object. Start your response with { and end with }."

// BuildUserPrompt returns the user message for transcript.
func BuildUserPrompt(transcript string) string {
	return transcript + UserPromptSuffix
}
