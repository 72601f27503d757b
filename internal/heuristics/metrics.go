package heuristics

import (
	"math"
	"sort"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/transcript"
)

// wordsPerMinute is the assumed average speaking rate.
const wordsPerMinute = 150

// Basics counts speakers, utterances and words.
func Basics(utterances []transcript.Utterance) analysis.BasicMetrics {
	speakers := transcript.Speakers(utterances)
	totalWords := 0
	for _, u := range utterances {
		totalWords += transcript.WordCount(u.Text)
	}

	avg := 0.0
	if len(utterances) > 0 {
		avg = float64(totalWords) / float64(len(utterances))
	}

	return analysis.BasicMetrics{
		TotalSpeakers:            len(speakers),
		Speakers:                 speakers,
		TotalUtterances:          len(utterances),
		TotalWords:               totalWords,
		EstimatedDuration:        int(math.Round(float64(totalWords) / wordsPerMinute)),
		AverageWordsPerUtterance: avg,
	}
}

// Participation reports each speaker's share of all spoken words, largest first.
// Speakers with equal shares keep their order of first appearance.
func Participation(utterances []transcript.Utterance) analysis.Participation {
	byName := make(map[string]*analysis.SpeakerShare)
	order := make([]string, 0)
	totalWords := 0

	for _, u := range utterances {
		share, ok := byName[u.Speaker]
		if !ok {
			share = &analysis.SpeakerShare{Name: u.Speaker}
			byName[u.Speaker] = share
			order = append(order, u.Speaker)
		}
		words := transcript.WordCount(u.Text)
		share.Utterances++
		share.Words += words
		totalWords += words
	}

	dist := make([]analysis.SpeakerShare, 0, len(order))
	for _, name := range order {
		share := *byName[name]
		if totalWords > 0 {
			share.Percentage = float64(share.Words) / float64(totalWords) * 100
		}
		dist = append(dist, share)
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Percentage > dist[j].Percentage
	})

	return analysis.Participation{
		Distribution: dist,
		TotalWords:   totalWords,
	}
}
