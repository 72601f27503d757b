// Package analysis defines the meeting analysis result consumed by the dashboard
// and the contract every analysis engine satisfies.
package analysis

// Result is the payload returned to clients and written to the outputs store.
//
// JSON shape:
//
//	{
//	  "basicMetrics":    {"totalSpeakers": int, "speakers": [string], "totalUtterances": int,
//	                      "totalWords": int, "estimatedDuration": int (minutes), "averageWordsPerUtterance": number},
//	  "participation":   {"distribution": [{"name", "utterances", "words", "percentage"}], "totalWords": int},
//	  "engagement":      {"questionFrequency", "feedbackInstances", "responseDynamics",
//	                      "turnTakingBalance", "overallEngagement"} (0-100),
//	  "topics":          {"distribution": [{"topic", "count", "percentage"}], "totalMentions": int},
//	  "knowledgeGaps":   {"explicitGaps": [{"speaker", "text", "type"}], "totalGaps": int},
//	  "powerDynamics":   {"highPower", "lowPower", "neutral"} (percent of utterances),
//	  "sentiment":       {"timeline": [number 1-5], "average": number},
//	  "relational":      {"trust", "collaboration"} (0-5),
//	  "breakthroughs":   [{"index", "speaker", "text", "type"}],
//	  "actions":         [{"speaker", "text", "type"}],
//	  "recommendations": [{"type", "priority", "text"}]
//	}
type Result struct {
	BasicMetrics    BasicMetrics     `json:"basicMetrics"`
	Participation   Participation    `json:"participation"`
	Engagement      Engagement       `json:"engagement"`
	Topics          Topics           `json:"topics"`
	KnowledgeGaps   KnowledgeGaps    `json:"knowledgeGaps"`
	PowerDynamics   PowerDynamics    `json:"powerDynamics"`
	Sentiment       Sentiment        `json:"sentiment"`
	Relational      Relational       `json:"relational"`
	Breakthroughs   []Breakthrough   `json:"breakthroughs"`
	Actions         []Action         `json:"actions"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RequiredKeys lists the top-level keys every result must carry.
var RequiredKeys = []string{
	"basicMetrics",
	"participation",
	"engagement",
	"topics",
	"knowledgeGaps",
	"powerDynamics",
	"sentiment",
	"relational",
	"breakthroughs",
	"actions",
	"recommendations",
}

// BasicMetrics holds transcript-wide counts. EstimatedDuration is in minutes.
type BasicMetrics struct {
	TotalSpeakers            int      `json:"totalSpeakers"`
	Speakers                 []string `json:"speakers"`
	TotalUtterances          int      `json:"totalUtterances"`
	TotalWords               int      `json:"totalWords"`
	EstimatedDuration        int      `json:"estimatedDuration"`
	AverageWordsPerUtterance float64  `json:"averageWordsPerUtterance"`
}

// SpeakerShare is one speaker's slice of the spoken words.
type SpeakerShare struct {
	Name       string  `json:"name"`
	Utterances int     `json:"utterances"`
	Words      int     `json:"words"`
	Percentage float64 `json:"percentage"`
}

// Participation lists speakers by share of words, largest first.
type Participation struct {
	Distribution []SpeakerShare `json:"distribution"`
	TotalWords   int            `json:"totalWords"`
}

// Engagement holds sub-scores and their mean, each on a 0-100 scale.
type Engagement struct {
	QuestionFrequency float64 `json:"questionFrequency"`
	FeedbackInstances float64 `json:"feedbackInstances"`
	ResponseDynamics  float64 `json:"responseDynamics"`
	TurnTakingBalance float64 `json:"turnTakingBalance"`
	OverallEngagement float64 `json:"overallEngagement"`
}

// TopicShare counts the utterances crediting one topic.
type TopicShare struct {
	Topic      string  `json:"topic"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Topics lists topic mentions, most mentioned first.
type Topics struct {
	Distribution  []TopicShare `json:"distribution"`
	TotalMentions int          `json:"totalMentions"`
}

// Gap is one utterance flagged by a knowledge-gap pattern. An utterance that
// matches several patterns appears once per pattern.
type Gap struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Type    string `json:"type"`
}

// KnowledgeGaps collects flagged gaps; TotalGaps counts records, not utterances.
type KnowledgeGaps struct {
	ExplicitGaps []Gap `json:"explicitGaps"`
	TotalGaps    int   `json:"totalGaps"`
}

// PowerDynamics gives the percentage of utterances in each class.
type PowerDynamics struct {
	HighPower float64 `json:"highPower"`
	LowPower  float64 `json:"lowPower"`
	Neutral   float64 `json:"neutral"`
}

// Sentiment holds per-utterance scores on a 1-5 scale and their mean.
type Sentiment struct {
	Timeline []float64 `json:"timeline"`
	Average  float64   `json:"average"`
}

// Relational carries aggregate scores only; there is no per-utterance series.
type Relational struct {
	Trust         float64 `json:"trust"`
	Collaboration float64 `json:"collaboration"`
}

// Breakthrough is a flagged realization, decision or emphasis, with an excerpt.
type Breakthrough struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Type    string `json:"type"`
}

// Action is a flagged commitment or task mention.
type Action struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Type    string `json:"type"`
}

// Priority of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is one follow-up suggestion derived from a result.
type Recommendation struct {
	Type     string   `json:"type"`
	Priority Priority `json:"priority"`
	Text     string   `json:"text"`
}

// Record types used by the heuristic analyzers.
const (
	GapTypeExplicit           = "explicit"
	BreakthroughTypeCognitive = "cognitive"
	ActionTypeAction          = "action"
)
