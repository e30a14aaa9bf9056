// Package patch reconstructs the structure of a `git log -p` stream.
//
// A stream is a sequence of patches. Each patch has a free-text header (the
// commit line, author, date and message) followed by per-file diffs:
//
//	Patch
//	  Header          commit abc123 / Author: ... / message
//	  Files[]
//	    Header        diff --git a/x b/x / index ... / --- a/x / +++ b/x
//	    Hunks[]
//	      Header      @@ -1,3 +1,4 @@
//	      ContextHead leading context lines
//	      Diffs[]
//	        Diff        run of +/- lines
//	        ContextTail context after the run
//
// The Builder assembles one Patch at a time from a line stream and hands each
// completed Patch to a flush callback.
package patch

import (
	"io"
	"strings"
)

// Line is one input line split into its parts.
type Line struct {
	Text  string // decoded line without terminator, ANSI escapes retained
	Plain string // Text with ANSI escapes removed; used for classification and matching
	EOL   string // original terminator: "\n", "\r\n" or "" for an unterminated last line
}

// NewLine returns a Line whose Plain text equals its Text.
func NewLine(text, eol string) Line {
	return Line{Text: text, Plain: text, EOL: eol}
}

// WriteTo writes the line exactly as it appeared in the input.
func (l Line) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.Text+l.EOL)
	return int64(n), err
}

// Contains reports whether the plain text of the line contains s.
func (l Line) Contains(s string) bool {
	return strings.Contains(l.Plain, s)
}

// Chunk is an ordered run of lines.
type Chunk struct {
	Lines []Line
}

func chunkOf(line Line) Chunk {
	return Chunk{Lines: []Line{line}}
}

func (c *Chunk) push(line Line) {
	c.Lines = append(c.Lines, line)
}

// Len returns the number of lines in the chunk.
func (c Chunk) Len() int { return len(c.Lines) }

// Patch is one commit: its header lines and its file diffs.
type Patch struct {
	Header Chunk
	Files  []*FileDiff
}

// FileDiff is the diff of a single file. Hunks may be empty for renames and
// mode changes.
type FileDiff struct {
	Header Chunk
	Hunks  []*Hunk
}

// Path returns the destination path named on the `diff --git a/X b/Y` line,
// or "" when the header does not carry one.
func (f *FileDiff) Path() string {
	if len(f.Header.Lines) == 0 {
		return ""
	}
	rest, ok := strings.CutPrefix(f.Header.Lines[0].Plain, "diff --git ")
	if !ok {
		return ""
	}
	// Paths with spaces are ambiguous; " b/" is the conventional separator.
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+len(" b/"):]
	}
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}

// Hunk is one @@ range and its body.
type Hunk struct {
	Header      Line
	ContextHead Chunk
	Diffs       []*HunkDiffWithTail
}

// HunkDiffWithTail is a run of added/removed lines and the context lines
// that follow it up to the next change or boundary.
type HunkDiffWithTail struct {
	Diff        Chunk
	ContextTail Chunk
}

// CommitLine returns the first header line of the patch.
func (p *Patch) CommitLine() (Line, bool) {
	if len(p.Header.Lines) == 0 {
		return Line{}, false
	}
	return p.Header.Lines[0], true
}

func (p *Patch) lastFile() *FileDiff {
	return p.Files[len(p.Files)-1]
}

func (f *FileDiff) lastHunk() *Hunk {
	return f.Hunks[len(f.Hunks)-1]
}

func (h *Hunk) lastDiff() *HunkDiffWithTail {
	return h.Diffs[len(h.Diffs)-1]
}
