package testutil

import (
	"strings"
	"testing"

	"github.com/samsaffron/hunk/internal/patch"
)

// SplitLines splits input into patch lines, keeping each line's terminator
// and deriving the plain text by stripping ANSI codes.
func SplitLines(input string) []patch.Line {
	var lines []patch.Line
	for input != "" {
		text, eol := input, ""
		if i := strings.IndexByte(input, '\n'); i >= 0 {
			text, eol = input[:i], "\n"
			input = input[i+1:]
			if strings.HasSuffix(text, "\r") {
				text, eol = text[:len(text)-1], "\r\n"
			}
		} else {
			input = ""
		}
		lines = append(lines, patch.Line{Text: text, Plain: StripANSI(text), EOL: eol})
	}
	return lines
}

// ParsePatches runs input through a patch.Builder and returns every patch it
// flushed.
func ParsePatches(t *testing.T, input string) []*patch.Patch {
	t.Helper()
	var patches []*patch.Patch
	b := patch.NewBuilder(func(p *patch.Patch) error {
		patches = append(patches, p)
		return nil
	})
	for _, line := range SplitLines(input) {
		if err := b.Feed(line); err != nil {
			t.Fatalf("Feed(%q) failed: %v", line.Text, err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return patches
}
