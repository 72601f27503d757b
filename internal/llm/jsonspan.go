package llm

import (
	"errors"
	"regexp"
	"strings"
)

var (
	leadingFenceRegex  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFenceRegex = regexp.MustCompile("\\s*```\\s*$")
)

// ErrNoJSONObject means the reply contained no complete {...} span.
var ErrNoJSONObject = errors.New("no JSON object in response")

// ExtractJSONObject strips markdown code fences and returns the first
// balanced {...} span of text. Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = leadingFenceRegex.ReplaceAllString(s, "")
	s = trailingFenceRegex.ReplaceAllString(s, "")

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}
