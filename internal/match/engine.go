// Package match decides whether a patch contains a search string in the
// enabled sections and writes the configured output for matching patches.
package match

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samsaffron/hunk/internal/patch"
)

// ErrNoCommitLine is returned in commit-hash mode when a patch header does
// not begin with a "commit " line.
var ErrNoCommitLine = errors.New("patch header does not start with a commit line")

const commitPrefix = "commit "

// Mode selects what is written for a matching patch.
type Mode int

const (
	// PrintSections writes the lines of the selected sections.
	PrintSections Mode = iota
	// PrintCommitHash writes only the commit hash.
	PrintCommitHash
)

// Output describes what is written for a matching patch.
type Output struct {
	Mode  Mode
	Print patch.Sections // used by PrintSections
}

// Config is the immutable configuration of an Engine.
type Config struct {
	Pattern  string         // literal, case-sensitive
	MatchOn  patch.Sections // sections searched for Pattern
	Output   Output
	PathGlob string // when set, only files whose path matches take part in matching
}

// Engine matches and emits patches.
type Engine struct {
	cfg Config
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	switch cfg.Output.Mode {
	case PrintSections:
		if cfg.Output.Print.Empty() {
			return nil, fmt.Errorf("no sections selected for printing")
		}
	case PrintCommitHash:
	default:
		return nil, fmt.Errorf("unknown output mode %d", cfg.Output.Mode)
	}
	if cfg.PathGlob != "" && !doublestar.ValidatePattern(cfg.PathGlob) {
		return nil, fmt.Errorf("invalid path glob %q", cfg.PathGlob)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Process writes the configured output for p if it matches. It reports
// whether p matched.
func (e *Engine) Process(w io.Writer, p *patch.Patch) (bool, error) {
	if !e.Matches(p) {
		return false, nil
	}
	return true, e.Emit(w, p)
}

// Matches reports whether any line of an enabled section contains the
// pattern. Sections are scanned in document order and the scan stops at the
// first hit.
func (e *Engine) Matches(p *patch.Patch) bool {
	on := e.cfg.MatchOn
	if on.Has(patch.PatchHeader) && e.anyLine(p.Header) {
		return true
	}
	for _, file := range p.Files {
		if !e.pathSelected(file) {
			continue
		}
		if on.Has(patch.FileHeader) && e.anyLine(file.Header) {
			return true
		}
		for _, hunk := range file.Hunks {
			if on.Has(patch.Context) {
				if hunk.Header.Contains(e.cfg.Pattern) || e.anyLine(hunk.ContextHead) {
					return true
				}
			}
			for _, d := range hunk.Diffs {
				if on.Has(patch.Diff) && e.anyLine(d.Diff) {
					return true
				}
				if on.Has(patch.Context) && e.anyLine(d.ContextTail) {
					return true
				}
			}
		}
	}
	return false
}

func (e *Engine) anyLine(c patch.Chunk) bool {
	for _, line := range c.Lines {
		if line.Contains(e.cfg.Pattern) {
			return true
		}
	}
	return false
}

func (e *Engine) pathSelected(f *patch.FileDiff) bool {
	if e.cfg.PathGlob == "" {
		return true
	}
	return doublestar.MatchUnvalidated(e.cfg.PathGlob, f.Path())
}

// Emit writes the configured output for p regardless of whether it matches.
func (e *Engine) Emit(w io.Writer, p *patch.Patch) error {
	if e.cfg.Output.Mode == PrintCommitHash {
		hash, err := CommitHash(p)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, hash+"\n")
		return err
	}
	return writeSections(w, p, e.cfg.Output.Print)
}

func writeSections(w io.Writer, p *patch.Patch, sections patch.Sections) error {
	if sections.Has(patch.PatchHeader) {
		if err := writeChunk(w, p.Header); err != nil {
			return err
		}
	}
	for _, file := range p.Files {
		if sections.Has(patch.FileHeader) {
			if err := writeChunk(w, file.Header); err != nil {
				return err
			}
		}
		for _, hunk := range file.Hunks {
			if sections.Has(patch.Context) {
				if _, err := hunk.Header.WriteTo(w); err != nil {
					return err
				}
				if err := writeChunk(w, hunk.ContextHead); err != nil {
					return err
				}
			}
			for _, d := range hunk.Diffs {
				if sections.Has(patch.Diff) {
					if err := writeChunk(w, d.Diff); err != nil {
						return err
					}
				}
				if sections.Has(patch.Context) {
					if err := writeChunk(w, d.ContextTail); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func writeChunk(w io.Writer, c patch.Chunk) error {
	for _, line := range c.Lines {
		if _, err := line.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// CommitHash returns the token following "commit " on the first header line
// of p, ignoring decorations such as " (HEAD -> main)".
func CommitHash(p *patch.Patch) (string, error) {
	line, ok := p.CommitLine()
	if !ok {
		return "", ErrNoCommitLine
	}
	rest, ok := strings.CutPrefix(line.Plain, commitPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoCommitLine, line.Plain)
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: missing hash in %q", ErrNoCommitLine, line.Plain)
	}
	return fields[0], nil
}
