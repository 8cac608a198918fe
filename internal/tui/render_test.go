package tui

import (
	"slices"
	"testing"
	"time"
)

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		maxWidth int
		maxLines int
		want     []string
	}{
		{"fits", "Fix bug", 20, 2, []string{"Fix bug"}},
		{"single line truncates everything", "Plan the sprint review meeting", 12, 1, []string{"Plan the ..."}},
		{"exact width", "Write release notes", 13, 2, []string{"Write release", "notes"}},
		{"remainder lands on last line", "one two three four five", 9, 2, []string{"one two", "three ..."}},
		{"wide runes measured in cells", "Überprüfung läuft", 11, 2, []string{"Überprüfung", "läuft"}},
		{"blank", "   ", 10, 2, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapTitle(tt.title, tt.maxWidth, tt.maxLines)
			if !slices.Equal(got, tt.want) {
				t.Errorf("wrapTitle(%q, %d, %d) = %q, want %q", tt.title, tt.maxWidth, tt.maxLines, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"abc", 2, "abc"},
		{"abcdefgh", 6, "abc..."},
		{"abcdef", 6, "abcdef"},
		{"日本語テキスト", 8, "日本..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatSpent(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{59*time.Minute + 59*time.Second, "59m"},
		{65 * time.Minute, "1h 05m"},
		{125 * time.Minute, "2h 05m"},
	}
	for _, tt := range tests {
		if got := formatSpent(tt.d); got != tt.want {
			t.Errorf("formatSpent(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestHumanDuration(t *testing.T) {
	const day = 24 * time.Hour
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "<1m"},
		{90 * time.Minute, "1h"},
		{36 * time.Hour, "1d"},
		{10 * day, "1w"},
		{45 * day, "1mo"},
		{400 * day, "1y"},
	}
	for _, tt := range tests {
		if got := humanDuration(tt.d); got != tt.want {
			t.Errorf("humanDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
