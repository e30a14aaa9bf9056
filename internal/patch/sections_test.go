package patch

import "testing"

func TestParseSections(t *testing.T) {
	tests := []struct {
		input   string
		want    Sections
		wantErr bool
	}{
		{"diff", NewSections(Diff), false},
		{"diff,context", NewSections(Diff, Context), false},
		{"patch_header, file_header", NewSections(PatchHeader, FileHeader), false},
		{"diff,,", NewSections(Diff), false},
		{"patch_header,file_header,context,diff", NewSections(PatchHeader, FileHeader, Context, Diff), false},
		{"", 0, true},
		{"diff,hunk", 0, true},
		{"Diff", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSections(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSections(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSections(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSectionsString(t *testing.T) {
	s := NewSections(Diff, PatchHeader)
	if got := s.String(); got != "patch_header,diff" {
		t.Errorf("String() = %q, want document order", got)
	}
	if !s.Has(Diff) || s.Has(Context) {
		t.Errorf("Has reported wrong membership for %v", s)
	}
	if !Sections(0).Empty() {
		t.Errorf("zero Sections should be empty")
	}
}
