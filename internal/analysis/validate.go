package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrSchemaMismatch reports a payload that does not satisfy the result schema.
var ErrSchemaMismatch = errors.New("analysis schema mismatch")

const (
	epsilon            = 1e-6
	roundingSlack      = 0.5
	maxEngagementScore = 100
	minSentiment       = 1
	maxSentiment       = 5
	maxRelational      = 5
)

// Validate decodes raw into a Result and checks the schema constraints. The
// raw payload may carry extra keys; only the documented ones are checked.
func Validate(raw []byte) (Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if top == nil {
		return Result{}, fmt.Errorf("%w: payload is not an object", ErrSchemaMismatch)
	}
	for _, key := range RequiredKeys {
		val, ok := top[key]
		if !ok || bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			return Result{}, fmt.Errorf("%w: missing key %q", ErrSchemaMismatch, key)
		}
	}

	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := r.Check(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return r, nil
}

// Check verifies counts, score ranges and distribution totals.
func (r *Result) Check() error {
	if r == nil {
		return errors.New("analysis result is nil")
	}

	b := r.BasicMetrics
	counts := []struct {
		name  string
		value int
	}{
		{"basicMetrics.totalSpeakers", b.TotalSpeakers},
		{"basicMetrics.totalUtterances", b.TotalUtterances},
		{"basicMetrics.totalWords", b.TotalWords},
		{"basicMetrics.estimatedDuration", b.EstimatedDuration},
		{"participation.totalWords", r.Participation.TotalWords},
		{"topics.totalMentions", r.Topics.TotalMentions},
		{"knowledgeGaps.totalGaps", r.KnowledgeGaps.TotalGaps},
	}
	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", c.name, c.value)
		}
	}
	if b.AverageWordsPerUtterance < 0 {
		return fmt.Errorf("basicMetrics.averageWordsPerUtterance must be non-negative")
	}

	shares := make([]float64, 0, len(r.Participation.Distribution))
	for i, s := range r.Participation.Distribution {
		if s.Utterances < 0 || s.Words < 0 {
			return fmt.Errorf("participation.distribution[%d] counts must be non-negative", i)
		}
		shares = append(shares, s.Percentage)
	}
	if err := checkDistribution("participation.distribution", shares); err != nil {
		return err
	}

	topicShares := make([]float64, 0, len(r.Topics.Distribution))
	for i, t := range r.Topics.Distribution {
		if t.Count < 0 {
			return fmt.Errorf("topics.distribution[%d].count must be non-negative", i)
		}
		topicShares = append(topicShares, t.Percentage)
	}
	if err := checkDistribution("topics.distribution", topicShares); err != nil {
		return err
	}

	e := r.Engagement
	scores := []struct {
		name  string
		value float64
	}{
		{"engagement.questionFrequency", e.QuestionFrequency},
		{"engagement.feedbackInstances", e.FeedbackInstances},
		{"engagement.responseDynamics", e.ResponseDynamics},
		{"engagement.turnTakingBalance", e.TurnTakingBalance},
		{"engagement.overallEngagement", e.OverallEngagement},
	}
	for _, s := range scores {
		if err := checkRange(s.name, s.value, 0, maxEngagementScore); err != nil {
			return err
		}
	}

	p := r.PowerDynamics
	if err := checkDistribution("powerDynamics", []float64{p.HighPower, p.LowPower, p.Neutral}); err != nil {
		return err
	}

	for i, v := range r.Sentiment.Timeline {
		if err := checkRange(fmt.Sprintf("sentiment.timeline[%d]", i), v, minSentiment, maxSentiment); err != nil {
			return err
		}
	}
	if err := checkRange("sentiment.average", r.Sentiment.Average, minSentiment, maxSentiment); err != nil {
		return err
	}

	if err := checkRange("relational.trust", r.Relational.Trust, 0, maxRelational); err != nil {
		return err
	}
	if err := checkRange("relational.collaboration", r.Relational.Collaboration, 0, maxRelational); err != nil {
		return err
	}

	for i, rec := range r.Recommendations {
		switch rec.Priority {
		case PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return fmt.Errorf("recommendations[%d].priority %q is not high, medium or low", i, rec.Priority)
		}
	}
	return nil
}

func checkRange(name string, value, lo, hi float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if value < lo-epsilon || value > hi+epsilon {
		return fmt.Errorf("%s must be between %g and %g, got %g", name, lo, hi, value)
	}
	return nil
}

// checkDistribution requires every percentage in [0,100] and a total of
// either zero (nothing counted) or roughly 100. Each entry may be rounded to
// a whole percent, so the allowed drift grows with the entry count.
func checkDistribution(name string, percentages []float64) error {
	total := 0.0
	for i, v := range percentages {
		if err := checkRange(fmt.Sprintf("%s[%d]", name, i), v, 0, 100); err != nil {
			return err
		}
		total += v
	}
	if total <= epsilon {
		return nil
	}
	slack := roundingSlack*float64(len(percentages)) + roundingSlack
	if math.Abs(total-100) > slack+epsilon {
		return fmt.Errorf("%s must total 100, got %.3f", name, total)
	}
	return nil
}
