package service

import (
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "short declarative kept verbatim",
			message: "Hello there",
			want:    "Hello there",
		},
		{
			name:    "punctuation stripped from short message",
			message: "Hello, world!",
			want:    "Hello world",
		},
		{
			name:    "five words kept verbatim",
			message: "one two three four five",
			want:    "one two three four five",
		},
		{
			name:    "six words truncated to four plus ellipsis",
			message: "one two three four five six",
			want:    "one two three four...",
		},
		{
			name:    "long declarative truncated",
			message: "This is a very long declarative statement about many things",
			want:    "This is a very...",
		},
		{
			name:    "short question kept as-is",
			message: "Are black holes real?",
			want:    "Are black holes real?",
		},
		{
			name:    "question at boundary kept whole",
			message: "What is the meaning of life on Earth?", // 37 chars
			want:    "What is the meaning of life on Earth?",
		},
		{
			name:    "long question truncated to 37 chars plus ellipsis",
			message: "What is the meaning of life, the universe, and everything else?",
			want:    "What is the meaning of life, the univ...",
		},
		{
			name:    "surrounding whitespace trimmed",
			message: "   Hello there   ",
			want:    "Hello there",
		},
		{
			name:    "blank input yields empty title",
			message: "   ",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.message)
			if got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestDeriveTitleDeterministic(t *testing.T) {
	message := "Tell me about the history of computing hardware"
	first := DeriveTitle(message)
	for i := 0; i < 10; i++ {
		if got := DeriveTitle(message); got != first {
			t.Fatalf("DeriveTitle not deterministic: %q vs %q", got, first)
		}
	}
}

func TestDeriveTitleQuestionLength(t *testing.T) {
	got := DeriveTitle("Why does the moon always show the same face to us?")
	if len([]rune(got)) > 40 {
		t.Errorf("question title too long: %d runes (%q)", len([]rune(got)), got)
	}
}
