package patch

import (
	"fmt"
	"strings"
)

// State is the position of the Builder within the patch grammar.
type State int

const (
	StateStart State = iota
	StatePatchHeader
	StateFileHeader
	StateHunkHead
	StateHunkBodyDiff
	StateHunkBodyTail
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePatchHeader:
		return "patch header"
	case StateFileHeader:
		return "file header"
	case StateHunkHead:
		return "hunk head"
	case StateHunkBodyDiff:
		return "hunk diff"
	case StateHunkBodyTail:
		return "hunk tail"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const noNewlineMarker = `\ No newline at end of file`

type lineKind int

const (
	kindOther lineKind = iota
	kindCommit
	kindFile
	kindHunk
	kindChange
	kindContext
)

// classify looks only at the leading characters of the plain text.
func classify(plain string) lineKind {
	switch {
	case strings.HasPrefix(plain, "commit "):
		return kindCommit
	case strings.HasPrefix(plain, "diff --git"):
		return kindFile
	case strings.HasPrefix(plain, "@@"):
		return kindHunk
	case strings.HasPrefix(plain, "+"), strings.HasPrefix(plain, "-"):
		return kindChange
	case plain == "", strings.HasPrefix(plain, " "), plain == noNewlineMarker:
		return kindContext
	}
	return kindOther
}

// ParseError reports a line that is not valid in the builder's current state.
type ParseError struct {
	Line   int // 1-based line number within the input
	State  State
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (%s): %s: %q", e.Line, e.State, e.Reason, e.Text)
}

// Builder assembles patches from a line stream. Only the patch currently
// being built is held; each completed patch is passed to the flush callback
// and then dropped.
type Builder struct {
	state State
	patch *Patch
	flush func(*Patch) error
	lines int
}

// NewBuilder returns a Builder that hands every completed patch to flush.
func NewBuilder(flush func(*Patch) error) *Builder {
	return &Builder{flush: flush}
}

// State returns the current state. Decoders use it to pick a placeholder for
// undecodable lines.
func (b *Builder) State() State { return b.state }

// Lines returns the number of lines fed so far.
func (b *Builder) Lines() int { return b.lines }

// Feed classifies line and adds it to the patch under construction. A line
// starting a new commit flushes the previous patch first.
func (b *Builder) Feed(line Line) error {
	b.lines++
	kind := classify(line.Plain)

	switch b.state {
	case StateStart:
		if kind != kindCommit {
			return b.fail(line, "expected a commit line at start of stream")
		}
		b.startPatch(line)

	case StatePatchHeader:
		if kind == kindFile {
			b.startFile(line)
			return nil
		}
		b.patch.Header.push(line)

	case StateFileHeader:
		switch kind {
		case kindCommit:
			return b.nextPatch(line)
		case kindFile:
			b.startFile(line)
		case kindHunk:
			b.startHunk(line)
		default:
			b.patch.lastFile().Header.push(line)
		}

	case StateHunkHead:
		switch kind {
		case kindCommit:
			return b.nextPatch(line)
		case kindFile:
			b.startFile(line)
		case kindHunk:
			b.startHunk(line)
		case kindChange:
			b.startDiff(line)
		case kindContext:
			b.patch.lastFile().lastHunk().ContextHead.push(line)
		default:
			return b.fail(line, "unrecognized line in hunk head")
		}

	case StateHunkBodyDiff:
		switch kind {
		case kindCommit:
			return b.nextPatch(line)
		case kindFile:
			b.startFile(line)
		case kindHunk:
			b.startHunk(line)
		case kindChange:
			b.patch.lastFile().lastHunk().lastDiff().Diff.push(line)
		case kindContext:
			b.patch.lastFile().lastHunk().lastDiff().ContextTail.push(line)
			b.state = StateHunkBodyTail
		default:
			return b.fail(line, "unrecognized line in hunk body")
		}

	case StateHunkBodyTail:
		switch kind {
		case kindCommit:
			return b.nextPatch(line)
		case kindFile:
			b.startFile(line)
		case kindHunk:
			b.startHunk(line)
		case kindChange:
			b.startDiff(line)
		case kindContext:
			b.patch.lastFile().lastHunk().lastDiff().ContextTail.push(line)
		default:
			return b.fail(line, "unrecognized line in hunk tail")
		}

	default:
		return fmt.Errorf("patch: builder in invalid state %v", b.state)
	}
	return nil
}

// Close flushes the patch in progress, if any. Incomplete patches (no files,
// files without hunks, hunks without changes) are flushed as they are. An
// input that never started a patch flushes nothing.
func (b *Builder) Close() error {
	if b.patch == nil {
		return nil
	}
	p := b.patch
	b.patch = nil
	b.state = StateStart
	return b.flush(p)
}

func (b *Builder) fail(line Line, reason string) error {
	return &ParseError{Line: b.lines, State: b.state, Text: line.Plain, Reason: reason}
}

func (b *Builder) nextPatch(line Line) error {
	if err := b.flush(b.patch); err != nil {
		return err
	}
	b.startPatch(line)
	return nil
}

func (b *Builder) startPatch(line Line) {
	b.patch = &Patch{Header: chunkOf(line)}
	b.state = StatePatchHeader
}

func (b *Builder) startFile(line Line) {
	b.patch.Files = append(b.patch.Files, &FileDiff{Header: chunkOf(line)})
	b.state = StateFileHeader
}

func (b *Builder) startHunk(line Line) {
	file := b.patch.lastFile()
	file.Hunks = append(file.Hunks, &Hunk{Header: line})
	b.state = StateHunkHead
}

func (b *Builder) startDiff(line Line) {
	hunk := b.patch.lastFile().lastHunk()
	hunk.Diffs = append(hunk.Diffs, &HunkDiffWithTail{Diff: chunkOf(line)})
	b.state = StateHunkBodyDiff
}
