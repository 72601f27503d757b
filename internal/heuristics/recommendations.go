package heuristics

import (
	"fmt"

	"meeting-backend/internal/analysis"
)

const (
	dominantSharePercent = 50
	lowEngagementScore   = 60
	knowledgeGapLimit    = 5
)

// Recommend derives follow-up suggestions from a finished result. Rules are
// evaluated in a fixed order: participation, engagement, knowledge.
func Recommend(r analysis.Result) []analysis.Recommendation {
	recs := make([]analysis.Recommendation, 0)

	maxShare := 0.0
	for _, s := range r.Participation.Distribution {
		if s.Percentage > maxShare {
			maxShare = s.Percentage
		}
	}
	if maxShare > dominantSharePercent {
		recs = append(recs, analysis.Recommendation{
			Type:     "participation",
			Priority: analysis.PriorityHigh,
			Text:     fmt.Sprintf("Consider encouraging more balanced participation. One speaker accounts for %.1f%% of the conversation.", maxShare),
		})
	}

	if r.Engagement.OverallEngagement < lowEngagementScore {
		recs = append(recs, analysis.Recommendation{
			Type:     "engagement",
			Priority: analysis.PriorityMedium,
			Text:     "Engagement levels are moderate. Consider more interactive elements or structured discussions.",
		})
	}

	if r.KnowledgeGaps.TotalGaps > knowledgeGapLimit {
		recs = append(recs, analysis.Recommendation{
			Type:     "knowledge",
			Priority: analysis.PriorityHigh,
			Text:     fmt.Sprintf("Multiple knowledge gaps identified (%d). Consider providing additional context or resources.", r.KnowledgeGaps.TotalGaps),
		})
	}

	return recs
}
