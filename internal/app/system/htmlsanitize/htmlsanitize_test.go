package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/clubhub/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Weekly games and puzzles.", "Weekly games and puzzles."},
		{"trims", "  Room 12  ", "Room 12"},
		{"strips tags", "<p><strong>Bold</strong> move</p>", "Bold move"},
		{"drops script", "Hello<script>alert('xss')</script>", "Hello"},
		{"drops attributes", `<a href="javascript:alert(1)">Click</a>`, "Click"},
		{"decodes entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"keeps ampersand", "Art & Design", "Art & Design"},
		{"keeps angle text", "grades 9 < 12", "grades 9 < 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
