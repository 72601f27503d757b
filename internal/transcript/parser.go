// Package transcript splits raw meeting transcript text into speaker-attributed utterances.
package transcript

import (
	"regexp"
	"strings"
)

var (
	// Matches "Speaker: text". The speaker group cannot contain a colon, so the
	// first colon on the line always ends the speaker name.
	speakerLineRegex = regexp.MustCompile(`^([^:]+?):\s*(.+)$`)

	// Bracketed annotations such as "[00:12]" are stripped from speaker names.
	bracketRegex = regexp.MustCompile(`\[.*?\]`)
)

// Utterance is one speaker's contiguous block of speech.
type Utterance struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp *string `json:"timestamp"`
}

// Parse splits text into utterances in speaking order.
//
// Lines that do not start with "Speaker:" are continuations of the open
// utterance and are joined with single spaces. Lines before the first speaker
// are dropped.
func Parse(text string) []Utterance {
	utterances := make([]Utterance, 0)

	var (
		speaker string
		open    bool
		parts   []string
	)

	flush := func() {
		if !open || len(parts) == 0 {
			return
		}
		utterances = append(utterances, Utterance{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(strings.Join(parts, " ")),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimRight(line, "\r")

		if m := speakerLineRegex.FindStringSubmatch(line); m != nil {
			flush()
			speaker = strings.TrimSpace(bracketRegex.ReplaceAllString(strings.TrimSpace(m[1]), ""))
			parts = []string{strings.TrimSpace(m[2])}
			// A name that is empty after stripping annotations never opens an utterance.
			open = speaker != ""
			continue
		}

		if open {
			parts = append(parts, strings.TrimSpace(line))
		}
	}
	flush()

	return utterances
}

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Speakers returns distinct speaker names in order of first appearance.
func Speakers(utterances []Utterance) []string {
	seen := make(map[string]bool, len(utterances))
	out := make([]string, 0)
	for _, u := range utterances {
		if seen[u.Speaker] {
			continue
		}
		seen[u.Speaker] = true
		out = append(out, u.Speaker)
	}
	return out
}
