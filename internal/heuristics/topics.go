package heuristics

import (
	"sort"
	"strings"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

type topicRule struct {
	name     string
	keywords []string
}

// topicRules is ordered; ties in the distribution keep this order.
var topicRules = []topicRule{
	{"Tool Adoption", []string{"tool", "platform", "software", "system", "technology", "adopt"}},
	{"Circles & Roles", []string{"circle", "role", "responsibility", "structure", "organization"}},
	{"SME Strategy", []string{"sme", "small business", "strategy", "approach", "plan"}},
	{"Private Equity", []string{"equity", "investment", "funding", "capital", "finance"}},
	{"Communications", []string{"communication", "message", "outreach", "marketing", "brand"}},
	{"HR Policy", []string{"hr", "human resources", "policy", "employee", "staff"}},
	{"Investors", []string{"investor", "stakeholder", "shareholder", "funding"}},
	{"Budget", []string{"budget", "cost", "expense", "financial", "money"}},
	{"Philanthropy", []string{"philanthropy", "charity", "donation", "giving", "social impact"}},
}

// Topics credits each topic at most once per utterance when any of its
// keywords occurs as a case-insensitive substring.
func Topics(utterances []transcript.Utterance) analysis.Topics {
	counts := make([]int, len(topicRules))
	total := 0
	for _, u := range utterances {
		text := strings.ToLower(u.Text)
		for i, rule := range topicRules {
			if containsAny(text, rule.keywords) {
				counts[i]++
				total++
			}
		}
	}

	dist := make([]analysis.TopicShare, 0, len(topicRules))
	for i, rule := range topicRules {
		share := analysis.TopicShare{Topic: rule.name, Count: counts[i]}
		if total > 0 {
			share.Percentage = float64(counts[i]) / float64(total) * 100
		}
		dist = append(dist, share)
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Percentage > dist[j].Percentage
	})

	return analysis.Topics{Distribution: dist, TotalMentions: total}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
