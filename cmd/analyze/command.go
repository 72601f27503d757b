package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/bootstrap"
	"meeting-backend/internal/extract"
	"meeting-backend/internal/shared/config"
	"meeting-backend/internal/shared/telemetry"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type analyzeOptions struct {
	engine  string
	output  string
	outPath string
	timeout time.Duration
}

// engineSource resolves engines; tests substitute a fixed set.
var engineSource = func(cfg config.Config) map[string]analysis.Engine {
	return bootstrap.BuildEngines(cfg)
}

func newRootCommand() *cobra.Command {
	opts := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a meeting transcript (.docx or .txt)",
		Long: `Analyze a meeting transcript and print the metrics.

The heuristic engine runs offline. The llm engine calls OpenRouter and needs
OPENROUTER_API_KEY plus the system prompt files under PROMPTS_DIR.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			telemetry.Configure(telemetry.Options{Level: "warn", Format: "console", Output: cmd.ErrOrStderr()})
			return runAnalyze(cmd.Context(), cfg, opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.engine, "engine", "", "Analysis engine: heuristic or llm (default from ANALYSIS_ENGINE)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatText, "Output format: text, json, yaml")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Also write the JSON result to this path")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Timeout for the analysis")
	return cmd
}

func runAnalyze(ctx context.Context, cfg config.Config, opts analyzeOptions, path string, stdout io.Writer) error {
	format := strings.ToLower(strings.TrimSpace(opts.output))
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("invalid output format: %s", opts.output)
	}

	engineName := strings.ToLower(strings.TrimSpace(opts.engine))
	if engineName == "" {
		engineName = cfg.AnalysisEngine
	}
	engine, ok := engineSource(cfg)[engineName]
	if !ok {
		return fmt.Errorf("unknown engine %q", engineName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	text, err := extract.ExtractTextFromBytes(ctx, data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("document appears to be empty")
	}

	raw, err := engine.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("%s analysis: %w", engine.Name(), err)
	}
	result, err := analysis.Validate(raw)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')

	if opts.outPath != "" {
		if err := os.WriteFile(opts.outPath, pretty.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.outPath, err)
		}
	}

	switch format {
	case formatJSON:
		_, err = stdout.Write(pretty.Bytes())
		return err
	case formatYAML:
		return writeYAML(stdout, raw)
	default:
		return writeText(stdout, engine, result)
	}
}

// writeYAML re-encodes raw as block-style YAML, keeping the JSON key order.
func writeYAML(w io.Writer, raw json.RawMessage) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func writeText(w io.Writer, engine analysis.Engine, r analysis.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Engine: %s (%s)\n\n", engine.Name(), engine.Model())

	m := r.BasicMetrics
	fmt.Fprintf(&b, "Speakers: %d  Utterances: %d  Words: %d  Est. duration: %d min\n\n",
		m.TotalSpeakers, m.TotalUtterances, m.TotalWords, m.EstimatedDuration)

	b.WriteString("Participation:\n")
	for _, s := range r.Participation.Distribution {
		fmt.Fprintf(&b, "  %-20s %5.1f%%  (%d utterances, %d words)\n", s.Name, s.Percentage, s.Utterances, s.Words)
	}

	e := r.Engagement
	fmt.Fprintf(&b, "\nEngagement: %.0f overall (questions %.0f, feedback %.0f, responses %.0f, balance %.0f)\n",
		e.OverallEngagement, e.QuestionFrequency, e.FeedbackInstances, e.ResponseDynamics, e.TurnTakingBalance)

	if len(r.Topics.Distribution) > 0 {
		b.WriteString("\nTopics:\n")
		for _, t := range r.Topics.Distribution {
			fmt.Fprintf(&b, "  %-20s %3d  %5.1f%%\n", t.Topic, t.Count, t.Percentage)
		}
	}

	fmt.Fprintf(&b, "\nKnowledge gaps: %d  Breakthroughs: %d  Actions: %d\n",
		r.KnowledgeGaps.TotalGaps, len(r.Breakthroughs), len(r.Actions))
	fmt.Fprintf(&b, "Sentiment: %.2f / 5  Trust: %.1f  Collaboration: %.1f\n",
		r.Sentiment.Average, r.Relational.Trust, r.Relational.Collaboration)

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  [%s] %s\n", rec.Priority, rec.Text)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
