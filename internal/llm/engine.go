package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/shared/telemetry"
)

// Engine implements analysis.Engine by prompting a chat model.
type Engine struct {
	client  Client
	prompts PromptLoader
}

// NewEngine returns an engine over client. client may be nil when no API key
// is configured; Analyze then fails with ErrNotConfigured.
func NewEngine(client Client, prompts PromptLoader) *Engine {
	return &Engine{client: client, prompts: prompts}
}

func (e *Engine) Name() string { return analysis.EngineLLM }

func (e *Engine) Model() string {
	if e.client == nil {
		return ""
	}
	return e.client.Model()
}

// Analyze sends the transcript to the model and returns the validated JSON object.
func (e *Engine) Analyze(ctx context.Context, transcript string) (json.RawMessage, error) {
	if e.client == nil {
		return nil, ErrNotConfigured
	}
	system, err := e.prompts.Load()
	if err != nil {
		return nil, err
	}

	reply, err := e.client.Complete(ctx, system, BuildUserPrompt(transcript))
	if err != nil {
		return nil, err
	}

	span, err := ExtractJSONObject(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamParse, err)
	}
	if !json.Valid([]byte(span)) {
		return nil, fmt.Errorf("%w: reply is not valid JSON", ErrUpstreamParse)
	}
	if _, err := analysis.Validate([]byte(span)); err != nil {
		telemetry.Warn("llm.schema_mismatch", map[string]any{"model": e.Model(), "err": err})
		return nil, fmt.Errorf("%w: %v", ErrUpstreamParse, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(span)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamParse, err)
	}
	return compact.Bytes(), nil
}

var _ analysis.Engine = (*Engine)(nil)
