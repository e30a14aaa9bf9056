// Package scan drives a single forward pass over a patch stream: it reads
// lines, decodes and classifies them, builds one patch at a time and hands
// each completed patch to the match engine.
package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/x/ansi"
	"github.com/samsaffron/hunk/internal/decode"
	"github.com/samsaffron/hunk/internal/match"
	"github.com/samsaffron/hunk/internal/patch"
)

// Options configures a Run.
type Options struct {
	Decode decode.Strategy
	Engine *match.Engine
	Logger *slog.Logger // optional
}

// Stats summarises a Run.
type Stats struct {
	Lines   int // lines read
	Patches int // patches handed to the engine
	Matched int // patches that produced output
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Lines += other.Lines
	s.Patches += other.Patches
	s.Matched += other.Matched
}

// Run reads r to the end and writes the output for every matching patch to
// w. Output of patches completed before an error is still written.
func Run(r io.Reader, w io.Writer, opts Options) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var stats Stats
	out := bufio.NewWriter(w)
	builder := patch.NewBuilder(func(p *patch.Patch) error {
		stats.Patches++
		matched, err := opts.Engine.Process(out, p)
		if err != nil {
			return fmt.Errorf("patch %d: %w", stats.Patches, err)
		}
		if matched {
			stats.Matched++
		}
		logger.Debug("patch done", "patch", stats.Patches, "files", len(p.Files), "matched", matched)
		return nil
	})

	err := feedAll(bufio.NewReader(r), builder, opts.Decode, logger, &stats)
	if err == nil {
		err = builder.Close()
	}
	if ferr := out.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("write output: %w", ferr)
	}
	return stats, err
}

func feedAll(r *bufio.Reader, b *patch.Builder, strategy decode.Strategy, logger *slog.Logger, stats *Stats) error {
	for {
		raw, err := r.ReadBytes('\n')
		if len(raw) > 0 {
			stats.Lines++
			line, derr := decodeLine(raw, strategy, b.State())
			if derr != nil {
				return fmt.Errorf("line %d: %w", stats.Lines, derr)
			}
			if line.Text != string(trimEOL(raw)) {
				logger.Debug("line decoded with substitutions", "line", stats.Lines, "strategy", strategy.String())
			}
			if ferr := b.Feed(line); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// decodeLine splits off the terminator, decodes the rest and derives the
// color-free classification text.
func decodeLine(raw []byte, strategy decode.Strategy, state patch.State) (patch.Line, error) {
	body := trimEOL(raw)
	eol := string(raw[len(body):])
	text, err := strategy.Decode(body, state)
	if err != nil {
		return patch.Line{}, err
	}
	return patch.Line{Text: text, Plain: ansi.Strip(text), EOL: eol}, nil
}

func trimEOL(raw []byte) []byte {
	body, ok := bytes.CutSuffix(raw, []byte("\n"))
	if !ok {
		return raw
	}
	body, _ = bytes.CutSuffix(body, []byte("\r"))
	return body
}
