package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptSeparator joins the individual prompt files.
const PromptSeparator = "\n\n---\n\n"

// PromptLoader reads the system prompt from disk on every call so edits take
// effect without a restart.
type PromptLoader struct {
	Dir   string
	Files []string
}

// Load concatenates the configured files in order.
func (p PromptLoader) Load() (string, error) {
	if len(p.Files) == 0 {
		return "", fmt.Errorf("%w: no prompt files configured", ErrPromptLoad)
	}
	parts := make([]string, 0, len(p.Files))
	for _, name := range p.Files {
		data, err := os.ReadFile(filepath.Join(p.Dir, name))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPromptLoad, err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, PromptSeparator), nil
}
