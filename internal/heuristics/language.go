package heuristics

import (
	"math"
	"strings"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

var (
	highPowerWords = []string{"must", "should", "need to", "require", "demand", "decide", "direct"}
	lowPowerWords  = []string{"maybe", "perhaps", "could", "might", "suggest", "consider", "think"}

	positiveWords = []string{"good", "great", "excellent", "wonderful", "amazing", "love", "happy", "excited"}
	negativeWords = []string{"bad", "terrible", "worried", "concerned", "problem", "issue", "difficult"}

	trustWords         = []string{"trust", "believe", "confident", "rely", "depend"}
	collaborationWords = []string{"together", "we", "us", "team", "collaborate", "work with"}
)

const (
	neutralSentiment = 3.0
	sentimentStep    = 0.5
)

// PowerDynamics classifies each utterance as high-power, low-power or
// neutral. High-power language wins when both kinds occur.
func PowerDynamics(utterances []transcript.Utterance) analysis.PowerDynamics {
	if len(utterances) == 0 {
		return analysis.PowerDynamics{}
	}
	var high, low, neutral int
	for _, u := range utterances {
		text := strings.ToLower(u.Text)
		switch {
		case containsAny(text, highPowerWords):
			high++
		case containsAny(text, lowPowerWords):
			low++
		default:
			neutral++
		}
	}
	total := float64(len(utterances))
	return analysis.PowerDynamics{
		HighPower: float64(high) / total * 100,
		LowPower:  float64(low) / total * 100,
		Neutral:   float64(neutral) / total * 100,
	}
}

// Sentiment scores each utterance from a neutral 3, moving half a point per
// distinct positive or negative word, clamped to [1, 5].
func Sentiment(utterances []transcript.Utterance) analysis.Sentiment {
	timeline := make([]float64, 0, len(utterances))
	sum := 0.0
	for _, u := range utterances {
		text := strings.ToLower(u.Text)
		score := neutralSentiment
		for _, w := range positiveWords {
			if strings.Contains(text, w) {
				score += sentimentStep
			}
		}
		for _, w := range negativeWords {
			if strings.Contains(text, w) {
				score -= sentimentStep
			}
		}
		score = math.Max(1, math.Min(5, score))
		timeline = append(timeline, score)
		sum += score
	}

	avg := neutralSentiment
	if len(timeline) > 0 {
		avg = sum / float64(len(timeline))
	}
	return analysis.Sentiment{Timeline: timeline, Average: avg}
}

// Relational maps the share of utterances using trust or collaboration
// language onto 0-5, saturating at 25%.
func Relational(utterances []transcript.Utterance) analysis.Relational {
	if len(utterances) == 0 {
		return analysis.Relational{}
	}
	var trust, collab int
	for _, u := range utterances {
		text := strings.ToLower(u.Text)
		if containsAny(text, trustWords) {
			trust++
		}
		if containsAny(text, collaborationWords) {
			collab++
		}
	}
	total := float64(len(utterances))
	return analysis.Relational{
		Trust:         math.Min(5, float64(trust)/total*100/20),
		Collaboration: math.Min(5, float64(collab)/total*100/20),
	}
}
