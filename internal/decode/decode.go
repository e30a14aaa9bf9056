// Package decode turns raw input lines into text according to a policy for
// bytes that are not valid UTF-8.
package decode

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samsaffron/hunk/internal/patch"
	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidUTF8 is returned by the Strict strategy.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Strategy selects how undecodable lines are handled.
type Strategy int

const (
	// Strict fails on invalid UTF-8.
	Strict Strategy = iota
	// Lossy replaces invalid sequences with U+FFFD.
	Lossy
	// SkipLine drops the line's content and substitutes a placeholder that
	// keeps the builder on its default path.
	SkipLine
)

// StrategyNames lists the accepted names for ParseStrategy.
var StrategyNames = []string{"strict", "lossy", "skip-line"}

// ParseStrategy parses a strategy name. "panic" is accepted as a synonym of
// "strict".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict", "panic":
		return Strict, nil
	case "lossy":
		return Lossy, nil
	case "skip-line", "skip":
		return SkipLine, nil
	}
	return Strict, fmt.Errorf("unknown invalid-utf8 strategy %q (valid: %s)", name, strings.Join(StrategyNames, ", "))
}

func (s Strategy) String() string {
	switch s {
	case Strict:
		return "strict"
	case Lossy:
		return "lossy"
	case SkipLine:
		return "skip-line"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Placeholder returns the text substituted for an undecodable line under
// SkipLine. Right after a hunk header an added line keeps the builder in the
// hunk body; everywhere else a context line is harmless.
func Placeholder(state patch.State) string {
	if state == patch.StateHunkHead {
		return "+"
	}
	return " "
}

// Decode converts raw (a line without its terminator) to text. state is the
// builder state the line will be fed into.
func (s Strategy) Decode(raw []byte, state patch.State) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	switch s {
	case Lossy:
		out, err := unicode.UTF8.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("lossy decode: %w", err)
		}
		return string(out), nil
	case SkipLine:
		return Placeholder(state), nil
	default:
		return "", ErrInvalidUTF8
	}
}
