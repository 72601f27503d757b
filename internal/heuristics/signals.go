package heuristics

import (
	"regexp"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

// Each pattern that matches an utterance yields its own record, so one
// utterance may be reported several times.
var (
	gapPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(don't know|don't understand|unclear|confused|not sure)\b`),
		regexp.MustCompile(`(?i)\b(need to learn|need to understand|need more information)\b`),
		regexp.MustCompile(`(?i)\b(what is|what does|how does|explain)\b`),
		regexp.MustCompile(`(?i)\b(missing|lack|gap|don't have)\b`),
	}

	breakthroughPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(breakthrough|realization|aha|understand|clear now)\b`),
		regexp.MustCompile(`(?i)\b(decided|decision|agreement|consensus)\b`),
		regexp.MustCompile(`(?i)\b(important|critical|key|essential)\b`),
	}

	actionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(will|going to|plan to|need to|should|must)\b`),
		regexp.MustCompile(`(?i)\b(action|task|todo|do|complete|finish)\b`),
	}
)

const excerptRunes = 100

// KnowledgeGaps flags utterances that express confusion, a learning need,
// a clarification request or something missing.
func KnowledgeGaps(utterances []transcript.Utterance) analysis.KnowledgeGaps {
	gaps := make([]analysis.Gap, 0)
	for _, u := range utterances {
		for _, p := range gapPatterns {
			if p.MatchString(u.Text) {
				gaps = append(gaps, analysis.Gap{
					Speaker: u.Speaker,
					Text:    u.Text,
					Type:    analysis.GapTypeExplicit,
				})
			}
		}
	}
	return analysis.KnowledgeGaps{ExplicitGaps: gaps, TotalGaps: len(gaps)}
}

// Breakthroughs records the utterance index and an excerpt of the first 100
// characters followed by "...".
func Breakthroughs(utterances []transcript.Utterance) []analysis.Breakthrough {
	out := make([]analysis.Breakthrough, 0)
	for i, u := range utterances {
		for _, p := range breakthroughPatterns {
			if p.MatchString(u.Text) {
				out = append(out, analysis.Breakthrough{
					Index:   i,
					Speaker: u.Speaker,
					Text:    excerpt(u.Text, excerptRunes) + "...",
					Type:    analysis.BreakthroughTypeCognitive,
				})
			}
		}
	}
	return out
}

// Actions flags commitments and task mentions.
func Actions(utterances []transcript.Utterance) []analysis.Action {
	out := make([]analysis.Action, 0)
	for _, u := range utterances {
		for _, p := range actionPatterns {
			if p.MatchString(u.Text) {
				out = append(out, analysis.Action{
					Speaker: u.Speaker,
					Text:    u.Text,
					Type:    analysis.ActionTypeAction,
				})
			}
		}
	}
	return out
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
