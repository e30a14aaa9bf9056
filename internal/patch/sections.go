package patch

import (
	"fmt"
	"strings"
)

// Section names a structural part of a patch that can be matched or printed.
type Section uint8

const (
	PatchHeader Section = 1 << iota
	FileHeader
	Context
	Diff
)

// allSections is in document order.
var allSections = []Section{PatchHeader, FileHeader, Context, Diff}

func (s Section) String() string {
	switch s {
	case PatchHeader:
		return "patch_header"
	case FileHeader:
		return "file_header"
	case Context:
		return "context"
	case Diff:
		return "diff"
	}
	return fmt.Sprintf("Section(%d)", uint8(s))
}

// SectionNames lists the accepted section names in document order.
func SectionNames() []string {
	names := make([]string, len(allSections))
	for i, s := range allSections {
		names[i] = s.String()
	}
	return names
}

// Sections is a set of sections.
type Sections uint8

// NewSections returns the set containing the given sections.
func NewSections(list ...Section) Sections {
	var s Sections
	for _, sec := range list {
		s |= Sections(sec)
	}
	return s
}

// ParseSections parses a comma separated list such as "diff,context".
func ParseSections(input string) (Sections, error) {
	var s Sections
	for _, item := range strings.Split(input, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		sec, ok := lookupSection(item)
		if !ok {
			return 0, fmt.Errorf("unknown patch section %q (valid: %s)", item, strings.Join(SectionNames(), ", "))
		}
		s |= Sections(sec)
	}
	if s == 0 {
		return 0, fmt.Errorf("no patch sections given (valid: %s)", strings.Join(SectionNames(), ", "))
	}
	return s, nil
}

func lookupSection(name string) (Section, bool) {
	for _, sec := range allSections {
		if sec.String() == name {
			return sec, true
		}
	}
	return 0, false
}

// Has reports whether sec is in the set.
func (s Sections) Has(sec Section) bool {
	return s&Sections(sec) != 0
}

// Empty reports whether the set has no sections.
func (s Sections) Empty() bool { return s == 0 }

// Names returns the section names in the set, in document order.
func (s Sections) Names() []string {
	var names []string
	for _, sec := range allSections {
		if s.Has(sec) {
			names = append(names, sec.String())
		}
	}
	return names
}

func (s Sections) String() string {
	return strings.Join(s.Names(), ",")
}
