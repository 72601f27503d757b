package heuristics

import (
	"math"
	"regexp"
	"strings"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

var (
	questionWordRegex = regexp.MustCompile(`\b(what|how|why|when|where|who)\b`)
	feedbackWordRegex = regexp.MustCompile(`\b(good|great|excellent|agree|yes|no|thanks|thank you)\b`)
	responseWordRegex = regexp.MustCompile(`\b(respond|answer|reply|react)\b`)
)

// Hit-rate multipliers that map a fraction of utterances onto the 0-100 scale.
const (
	questionWeight = 1000
	feedbackWeight = 500
	responseWeight = 800

	neutralBalance = 50
)

// Engagement scores questions, feedback, responses and turn-taking balance on 0-100.
func Engagement(utterances []transcript.Utterance) analysis.Engagement {
	var questions, feedback, responses int
	for _, u := range utterances {
		text := strings.ToLower(u.Text)
		if strings.Contains(text, "?") || questionWordRegex.MatchString(text) {
			questions++
		}
		if feedbackWordRegex.MatchString(text) {
			feedback++
		}
		if responseWordRegex.MatchString(text) {
			responses++
		}
	}

	total := len(utterances)
	e := analysis.Engagement{
		QuestionFrequency: weightedRate(questions, total, questionWeight),
		FeedbackInstances: weightedRate(feedback, total, feedbackWeight),
		ResponseDynamics:  weightedRate(responses, total, responseWeight),
		TurnTakingBalance: turnTakingBalance(utterances),
	}
	e.OverallEngagement = (e.QuestionFrequency + e.FeedbackInstances + e.ResponseDynamics + e.TurnTakingBalance) / 4
	return e
}

func weightedRate(hits, total int, weight float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Min(100, float64(hits)/float64(total)*weight)
}

func turnTakingBalance(utterances []transcript.Utterance) float64 {
	counts := make(map[string]int)
	for _, u := range utterances {
		counts[u.Speaker]++
	}
	values := make([]int, 0, len(counts))
	sum := 0
	for _, c := range counts {
		values = append(values, c)
		sum += c
	}
	if sum == 0 {
		return neutralBalance
	}
	return math.Max(0, 100-Gini(values)*100)
}

// Gini returns the mean-absolute-difference Gini coefficient of values:
// 0 for a perfectly even distribution, approaching 1 as one value dominates.
// It returns 0 for empty input or an all-zero distribution.
func Gini(values []int) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return 0
	}
	mean := float64(sum) / float64(n)

	diff := 0
	for _, a := range values {
		for _, b := range values {
			if a > b {
				diff += a - b
			} else {
				diff += b - a
			}
		}
	}
	return float64(diff) / (2 * float64(n*n) * mean)
}
