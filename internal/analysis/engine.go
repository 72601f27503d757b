package analysis

import (
	"context"
	"encoding/json"
)

// Engine names accepted by the service and the CLI.
const (
	EngineHeuristic = "heuristic"
	EngineLLM       = "llm"
)

// Engine turns transcript text into a result payload satisfying the schema.
// Implementations may include keys beyond the schema.
type Engine interface {
	Name() string
	Model() string
	Analyze(ctx context.Context, transcript string) (json.RawMessage, error)
}
