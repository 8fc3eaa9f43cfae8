package service

import (
	"strings"
)

const (
	questionTitleMax  = 40
	questionTitleTrim = 37
	shortTitleWords   = 5
	longTitlePrefix   = 4
)

// DeriveTitle builds a conversation title from its first user message.
// Pure and deterministic: the same message always yields the same title.
func DeriveTitle(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ""
	}

	// Questions keep their original form so the title reads naturally.
	if strings.HasSuffix(trimmed, "?") {
		runes := []rune(trimmed)
		if len(runes) > questionTitleMax {
			return string(runes[:questionTitleTrim]) + "..."
		}
		return trimmed
	}

	cleaned := strings.TrimSpace(stripPunctuation(trimmed))
	words := strings.Fields(cleaned)
	if len(words) <= shortTitleWords {
		return cleaned
	}
	return strings.Join(words[:longTitlePrefix], " ") + "..."
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '?', '.', '!', ',', ';', ':':
			return -1
		}
		return r
	}, s)
}
