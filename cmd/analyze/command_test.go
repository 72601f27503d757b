package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/heuristics"
	"meeting-backend/internal/shared/config"
)

const transcript = `Alice: Good morning everyone, let's review the project timeline.
Bob: I think we should focus on the budget first. What do you think?
Alice: Great idea. I'm not sure about the design costs though.
Carol: I will send the updated estimates by Friday.
`

func useHeuristicOnly(t *testing.T) {
	t.Helper()
	prev := engineSource
	engineSource = func(config.Config) map[string]analysis.Engine {
		return map[string]analysis.Engine{analysis.EngineHeuristic: heuristics.NewEngine()}
	}
	t.Cleanup(func() { engineSource = prev })
}

func writeTranscript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standup.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func heuristicConfig() config.Config {
	return config.Config{AnalysisEngine: analysis.EngineHeuristic}
}

func TestRunAnalyzeJSON(t *testing.T) {
	useHeuristicOnly(t)
	path := writeTranscript(t, transcript)
	outPath := filepath.Join(t.TempDir(), "result.json")

	var stdout bytes.Buffer
	err := runAnalyze(context.Background(), heuristicConfig(), analyzeOptions{output: "json", outPath: outPath}, path, &stdout)
	require.NoError(t, err)

	result, err := analysis.Validate(stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, result.BasicMetrics.TotalSpeakers)
	assert.Equal(t, 4, result.BasicMetrics.TotalUtterances)

	saved, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, stdout.String(), string(saved))
	assert.True(t, json.Valid(saved))
}

func TestRunAnalyzeYAML(t *testing.T) {
	useHeuristicOnly(t)
	path := writeTranscript(t, transcript)

	var stdout bytes.Buffer
	require.NoError(t, runAnalyze(context.Background(), heuristicConfig(), analyzeOptions{output: "YAML"}, path, &stdout))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &doc))
	assert.Contains(t, doc, "basicMetrics")
	assert.True(t, strings.HasPrefix(stdout.String(), "basicMetrics:"), stdout.String())
}

func TestRunAnalyzeText(t *testing.T) {
	useHeuristicOnly(t)
	path := writeTranscript(t, transcript)

	var stdout bytes.Buffer
	require.NoError(t, runAnalyze(context.Background(), heuristicConfig(), analyzeOptions{output: "text"}, path, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "Engine: heuristic")
	assert.Contains(t, out, "Speakers: 3")
	assert.Contains(t, out, "Participation:")
	assert.Contains(t, out, "Alice")
}

func TestRunAnalyzeErrors(t *testing.T) {
	useHeuristicOnly(t)
	path := writeTranscript(t, transcript)
	empty := writeTranscript(t, "  \n\n")

	tests := []struct {
		name string
		opts analyzeOptions
		path string
		want string
	}{
		{"bad format", analyzeOptions{output: "xml"}, path, "invalid output format"},
		{"unknown engine", analyzeOptions{output: "json", engine: "gpt"}, path, `unknown engine "gpt"`},
		{"missing file", analyzeOptions{output: "json"}, filepath.Join(t.TempDir(), "nope.txt"), "read transcript"},
		{"empty", analyzeOptions{output: "json"}, empty, "document appears to be empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := runAnalyze(context.Background(), heuristicConfig(), tc.opts, tc.path, &stdout)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Zero(t, stdout.Len())
		})
	}
}

func TestRootCommandRequiresFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
