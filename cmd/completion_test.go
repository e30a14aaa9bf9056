package cmd

import (
	"reflect"
	"testing"
)

func TestSectionListCompletion(t *testing.T) {
	tests := []struct {
		toComplete string
		want       []string
	}{
		{"", []string{"patch_header", "file_header", "context", "diff"}},
		{"d", []string{"diff"}},
		{"diff,", []string{"diff,patch_header", "diff,file_header", "diff,context"}},
		{"diff,c", []string{"diff,context"}},
		{"diff,context,patch_header,file_header,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.toComplete, func(t *testing.T) {
			got, _ := SectionListCompletion(rootCmd, nil, tt.toComplete)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("completions for %q = %v, want %v", tt.toComplete, got, tt.want)
			}
		})
	}
}

func TestInvalidUTF8Completion(t *testing.T) {
	got, _ := InvalidUTF8Completion(rootCmd, nil, "s")
	if !reflect.DeepEqual(got, []string{"strict", "skip-line"}) {
		t.Errorf("completions = %v", got)
	}
}
