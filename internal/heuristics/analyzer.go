// Package heuristics scores meeting transcripts with keyword and pattern
// heuristics. Each facet of the result is computed by an independent Analyzer
// so a model-backed implementation can replace any one of them.
package heuristics

import (
	"context"
	"encoding/json"
	"fmt"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

// ModelName identifies the heuristic rule set in catalog records and cache keys.
const ModelName = "keyword-heuristics-v1"

// Analyzer computes one facet of a result from parsed utterances.
type Analyzer interface {
	Name() string
	Apply(utterances []transcript.Utterance, out *analysis.Result)
}

type facet struct {
	name  string
	apply func([]transcript.Utterance, *analysis.Result)
}

func (f facet) Name() string { return f.name }

func (f facet) Apply(utterances []transcript.Utterance, out *analysis.Result) {
	f.apply(utterances, out)
}

// DefaultAnalyzers returns the analyzers for every result facet except
// recommendations, which are derived from the finished result.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		facet{"basicMetrics", func(u []transcript.Utterance, r *analysis.Result) { r.BasicMetrics = Basics(u) }},
		facet{"participation", func(u []transcript.Utterance, r *analysis.Result) { r.Participation = Participation(u) }},
		facet{"engagement", func(u []transcript.Utterance, r *analysis.Result) { r.Engagement = Engagement(u) }},
		facet{"topics", func(u []transcript.Utterance, r *analysis.Result) { r.Topics = Topics(u) }},
		facet{"knowledgeGaps", func(u []transcript.Utterance, r *analysis.Result) { r.KnowledgeGaps = KnowledgeGaps(u) }},
		facet{"powerDynamics", func(u []transcript.Utterance, r *analysis.Result) { r.PowerDynamics = PowerDynamics(u) }},
		facet{"sentiment", func(u []transcript.Utterance, r *analysis.Result) { r.Sentiment = Sentiment(u) }},
		facet{"relational", func(u []transcript.Utterance, r *analysis.Result) { r.Relational = Relational(u) }},
		facet{"breakthroughs", func(u []transcript.Utterance, r *analysis.Result) { r.Breakthroughs = Breakthroughs(u) }},
		facet{"actions", func(u []transcript.Utterance, r *analysis.Result) { r.Actions = Actions(u) }},
	}
}

// Pipeline runs a set of analyzers and then the recommendation rules.
type Pipeline struct {
	analyzers []Analyzer
}

// NewPipeline builds a pipeline over analyzers, or the defaults when none are given.
func NewPipeline(analyzers ...Analyzer) *Pipeline {
	if len(analyzers) == 0 {
		analyzers = DefaultAnalyzers()
	}
	return &Pipeline{analyzers: analyzers}
}

// Run computes a fresh result. Recommendations are appended last.
func (p *Pipeline) Run(utterances []transcript.Utterance) analysis.Result {
	r := analysis.Result{
		Breakthroughs:   []analysis.Breakthrough{},
		Actions:         []analysis.Action{},
		Recommendations: []analysis.Recommendation{},
	}
	for _, a := range p.analyzers {
		a.Apply(utterances, &r)
	}
	r.Recommendations = Recommend(r)
	return r
}

// AnalyzeText parses text and runs the default pipeline.
func AnalyzeText(text string) analysis.Result {
	return NewPipeline().Run(transcript.Parse(text))
}

// Engine adapts the pipeline to analysis.Engine.
type Engine struct {
	pipeline *Pipeline
}

// NewEngine constructs a heuristic engine with the default analyzers.
func NewEngine() *Engine {
	return &Engine{pipeline: NewPipeline()}
}

func (e *Engine) Name() string  { return analysis.EngineHeuristic }
func (e *Engine) Model() string { return ModelName }

// Analyze parses and scores the transcript.
func (e *Engine) Analyze(ctx context.Context, text string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := e.pipeline.Run(transcript.Parse(text))
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal heuristic result: %w", err)
	}
	return raw, nil
}

var _ analysis.Engine = (*Engine)(nil)
