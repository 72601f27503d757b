package heuristics

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

func TestParticipation_PercentagesSumToHundred(t *testing.T) {
	utts := transcript.Parse("Alice: one two three\nBob: four\nAlice: five six")

	got := Participation(utts)

	require.Len(t, got.Distribution, 2)
	assert.Equal(t, 6, got.TotalWords)
	assert.Equal(t, "Alice", got.Distribution[0].Name)
	assert.Equal(t, 2, got.Distribution[0].Utterances)
	assert.Equal(t, 5, got.Distribution[0].Words)

	sum := 0.0
	for _, s := range got.Distribution {
		sum += s.Percentage
	}
	assert.InDelta(t, 100, sum, 1e-9)
}

func TestParticipation_EmptyTranscript(t *testing.T) {
	got := Participation(nil)

	assert.NotNil(t, got.Distribution)
	assert.Empty(t, got.Distribution)
	assert.Zero(t, got.TotalWords)
}

func TestBasics(t *testing.T) {
	got := Basics(transcript.Parse("Alice: one two three\nBob: four\nAlice: five six"))

	assert.Equal(t, 2, got.TotalSpeakers)
	assert.Equal(t, []string{"Alice", "Bob"}, got.Speakers)
	assert.Equal(t, 3, got.TotalUtterances)
	assert.Equal(t, 6, got.TotalWords)
	assert.Equal(t, 0, got.EstimatedDuration)
	assert.InDelta(t, 2.0, got.AverageWordsPerUtterance, 1e-9)
}

func TestBasics_EstimatedDurationRounds(t *testing.T) {
	text := "Alice: " + strings.Repeat("word ", 225)

	got := Basics(transcript.Parse(text))

	assert.Equal(t, 225, got.TotalWords)
	assert.Equal(t, 2, got.EstimatedDuration)
}

func TestGini(t *testing.T) {
	assert.Zero(t, Gini(nil))
	assert.Zero(t, Gini([]int{0, 0}))
	assert.Zero(t, Gini([]int{4, 4, 4}))
	assert.InDelta(t, 0.25, Gini([]int{3, 1}), 1e-9)
	assert.Greater(t, Gini([]int{9, 1}), Gini([]int{3, 1}))
}

func TestEngagement_Scores(t *testing.T) {
	got := Engagement(transcript.Parse("Alice: what time is it?\nBob: thanks"))

	assert.InDelta(t, 100, got.QuestionFrequency, 1e-9)
	assert.InDelta(t, 100, got.FeedbackInstances, 1e-9)
	assert.Zero(t, got.ResponseDynamics)
	assert.InDelta(t, 100, got.TurnTakingBalance, 1e-9)
	assert.InDelta(t, 75, got.OverallEngagement, 1e-9)
}

func TestEngagement_WeightsBelowClamp(t *testing.T) {
	lines := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		speaker := "Alice"
		if i%2 == 1 {
			speaker = "Bob"
		}
		lines = append(lines, speaker+": status update noted")
	}
	lines[0] = "Alice: is the deck ready?"
	lines[1] = "Bob: thanks for the slides"
	lines[2] = "Alice: I will reply tonight"

	got := Engagement(transcript.Parse(strings.Join(lines, "\n")))

	assert.InDelta(t, 50, got.QuestionFrequency, 1e-9)  // 1/20 * 1000
	assert.InDelta(t, 25, got.FeedbackInstances, 1e-9)  // 1/20 * 500
	assert.InDelta(t, 40, got.ResponseDynamics, 1e-9)   // 1/20 * 800
	assert.InDelta(t, 100, got.TurnTakingBalance, 1e-9) // 10 turns each
	assert.InDelta(t, 53.75, got.OverallEngagement, 1e-9)
}

func TestEngagement_BalanceDropsWhenOneSpeakerDominates(t *testing.T) {
	even := Engagement(transcript.Parse("Alice: a\nBob: b\nAlice: c\nBob: d"))
	skewed := Engagement(transcript.Parse("Alice: a\nAlice: b\nAlice: c\nBob: d"))

	assert.InDelta(t, 100, even.TurnTakingBalance, 1e-9)
	assert.InDelta(t, 75, skewed.TurnTakingBalance, 1e-9)
}

func TestEngagement_EmptyTranscriptIsNeutral(t *testing.T) {
	got := Engagement(nil)

	assert.Zero(t, got.QuestionFrequency)
	assert.Equal(t, 50.0, got.TurnTakingBalance)
	assert.InDelta(t, 12.5, got.OverallEngagement, 1e-9)
}

func TestTopics_CreditsTopicOncePerUtterance(t *testing.T) {
	got := Topics(transcript.Parse("Alice: We need a new tool and platform"))

	require.NotEmpty(t, got.Distribution)
	assert.Equal(t, 1, got.TotalMentions)
	assert.Equal(t, "Tool Adoption", got.Distribution[0].Topic)
	assert.Equal(t, 1, got.Distribution[0].Count)
	assert.InDelta(t, 100, got.Distribution[0].Percentage, 1e-9)
	assert.Len(t, got.Distribution, len(topicRules))
}

func TestTopics_NoMentionsKeepsTableOrder(t *testing.T) {
	got := Topics(transcript.Parse("Alice: hello"))

	assert.Zero(t, got.TotalMentions)
	for i, share := range got.Distribution {
		assert.Equal(t, topicRules[i].name, share.Topic)
		assert.Zero(t, share.Percentage)
	}
}

func TestKnowledgeGaps_OneRecordPerMatchingPattern(t *testing.T) {
	got := KnowledgeGaps(transcript.Parse("Alice: I don't know what is missing"))

	assert.Equal(t, 3, got.TotalGaps)
	require.Len(t, got.ExplicitGaps, 3)
	for _, g := range got.ExplicitGaps {
		assert.Equal(t, "Alice", g.Speaker)
		assert.Equal(t, analysis.GapTypeExplicit, g.Type)
	}
}

func TestBreakthroughs_TruncatesText(t *testing.T) {
	text := "This is important " + strings.Repeat("x", 120)

	got := Breakthroughs(transcript.Parse("Alice: hi\nBob: " + text))

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "Bob", got[0].Speaker)
	assert.Equal(t, text[:100]+"...", got[0].Text)
	assert.Equal(t, analysis.BreakthroughTypeCognitive, got[0].Type)
}

func TestActions(t *testing.T) {
	got := Actions(transcript.Parse("Alice: I will do it\nBob: sounds fine"))

	require.Len(t, got, 2)
	assert.Equal(t, "I will do it", got[0].Text)
	assert.Equal(t, analysis.ActionTypeAction, got[1].Type)
}

func TestPowerDynamics_HighWinsOverLow(t *testing.T) {
	got := PowerDynamics(transcript.Parse("Alice: we must ship\nBob: maybe later\nCarol: hello\nDan: maybe we should"))

	assert.InDelta(t, 50, got.HighPower, 1e-9)
	assert.InDelta(t, 25, got.LowPower, 1e-9)
	assert.InDelta(t, 25, got.Neutral, 1e-9)
}

func TestSentiment(t *testing.T) {
	got := Sentiment(transcript.Parse("Alice: This is great and wonderful\nBob: hello there\nCarol: bad terrible problem issue difficult worried concerned"))

	require.Len(t, got.Timeline, 3)
	assert.Equal(t, 4.0, got.Timeline[0])
	assert.Equal(t, 3.0, got.Timeline[1])
	assert.Equal(t, 1.0, got.Timeline[2])
	assert.InDelta(t, 8.0/3, got.Average, 1e-9)
}

func TestSentiment_EmptyAverageIsNeutral(t *testing.T) {
	got := Sentiment(nil)

	assert.Empty(t, got.Timeline)
	assert.Equal(t, 3.0, got.Average)
}

func TestRelational(t *testing.T) {
	got := Relational(transcript.Parse("Alice: we trust the team\nBob: ok"))

	assert.InDelta(t, 2.5, got.Trust, 1e-9)
	assert.InDelta(t, 2.5, got.Collaboration, 1e-9)
}

func TestRecommend_ParticipationOnlyWhenShareExceedsHalf(t *testing.T) {
	dominant := AnalyzeText("Alice: one two three\nBob: four")
	even := AnalyzeText("Alice: one two\nBob: three four")

	require.NotEmpty(t, dominant.Recommendations)
	assert.Equal(t, "participation", dominant.Recommendations[0].Type)
	assert.Equal(t, analysis.PriorityHigh, dominant.Recommendations[0].Priority)
	assert.Contains(t, dominant.Recommendations[0].Text, "75.0%")

	for _, rec := range even.Recommendations {
		assert.NotEqual(t, "participation", rec.Type)
	}
}

func TestRecommend_KnowledgeGaps(t *testing.T) {
	r := analysis.Result{
		Engagement:    analysis.Engagement{OverallEngagement: 80},
		KnowledgeGaps: analysis.KnowledgeGaps{TotalGaps: 6},
	}

	got := Recommend(r)

	require.Len(t, got, 1)
	assert.Equal(t, "knowledge", got[0].Type)
	assert.Equal(t, "Multiple knowledge gaps identified (6). Consider providing additional context or resources.", got[0].Text)
}

func TestRecommend_AllRulesInOrder(t *testing.T) {
	r := analysis.Result{
		Participation: analysis.Participation{Distribution: []analysis.SpeakerShare{
			{Name: "Alice", Percentage: 80},
			{Name: "Bob", Percentage: 20},
		}},
		Engagement:    analysis.Engagement{OverallEngagement: 40},
		KnowledgeGaps: analysis.KnowledgeGaps{TotalGaps: 7},
	}

	got := Recommend(r)

	require.Len(t, got, 3)
	assert.Equal(t, "participation", got[0].Type)
	assert.Equal(t, analysis.PriorityHigh, got[0].Priority)
	assert.Contains(t, got[0].Text, "80.0%")
	assert.Equal(t, "engagement", got[1].Type)
	assert.Equal(t, analysis.PriorityMedium, got[1].Priority)
	assert.Equal(t, "knowledge", got[2].Type)
	assert.Equal(t, analysis.PriorityHigh, got[2].Priority)
	assert.Contains(t, got[2].Text, "(7)")
}

func TestRecommend_EngagementThreshold(t *testing.T) {
	low := Recommend(analysis.Result{Engagement: analysis.Engagement{OverallEngagement: 59.9}})
	atLimit := Recommend(analysis.Result{Engagement: analysis.Engagement{OverallEngagement: 60}})

	require.Len(t, low, 1)
	assert.Equal(t, "engagement", low[0].Type)
	assert.Equal(t, analysis.PriorityMedium, low[0].Priority)
	assert.Empty(t, atLimit)
}

func TestAnalyzeText_EmptyTranscriptIsValid(t *testing.T) {
	got := AnalyzeText("")

	require.NoError(t, got.Check())
	assert.Equal(t, 3.0, got.Sentiment.Average)
	assert.Equal(t, 50.0, got.Engagement.TurnTakingBalance)
	for _, v := range []float64{
		got.BasicMetrics.AverageWordsPerUtterance,
		got.Engagement.OverallEngagement,
		got.PowerDynamics.HighPower,
		got.Relational.Trust,
	} {
		assert.False(t, math.IsNaN(v))
	}
}

func TestEngine_AnalyzeProducesValidResult(t *testing.T) {
	e := NewEngine()

	raw, err := e.Analyze(context.Background(), "Alice: What is the plan?\nBob: We will decide together. Great idea.")
	require.NoError(t, err)

	got, err := analysis.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BasicMetrics.TotalSpeakers)
	assert.Equal(t, analysis.EngineHeuristic, e.Name())
	assert.Equal(t, ModelName, e.Model())
}

func TestEngine_AnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Analyze(ctx, "Alice: hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_RunsOnlyGivenAnalyzers(t *testing.T) {
	p := NewPipeline(facet{"basicMetrics", func(u []transcript.Utterance, r *analysis.Result) { r.BasicMetrics = Basics(u) }})

	got := p.Run(transcript.Parse("Alice: hi"))

	assert.Equal(t, 1, got.BasicMetrics.TotalUtterances)
	assert.Nil(t, got.Participation.Distribution)
	assert.NotNil(t, got.Actions)
}
