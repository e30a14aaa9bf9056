package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samsaffron/hunk/internal/exitcode"
	"github.com/samsaffron/hunk/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const history = `commit bcd581d9af
Author: A <a@example.com>

    Add AI player

diff --git a/src/ai.rs b/src/ai.rs
@@ -1,2 +1,2 @@
 use std;
-struct Player;
+struct AIPlayer;
commit 39512ad045
Author: A <a@example.com>

    Mention AIPlayer in docs only

diff --git a/README b/README
@@ -1 +1,2 @@
 # Game
+See docs.
`

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func executeRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSearchDefaults(t *testing.T) {
	out, _, err := executeRoot(t, history, "AIPlayer")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertOutput(t, out, "commit bcd581d9af\nAuthor: A <a@example.com>\n\n    Add AI player\n\n")
}

func TestSearchCommitHash(t *testing.T) {
	out, _, err := executeRoot(t, history, "AIPlayer", "--match-fields", "diff,patch_header", "--commit-hash")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertOutput(t, out, "bcd581d9af\n39512ad045\n")
}

func TestSearchPrintFields(t *testing.T) {
	out, _, err := executeRoot(t, history, "docs", "--match-fields", "diff", "--print-fields", "file_header,diff")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertOutput(t, out, "diff --git a/README b/README\n+See docs.\n")
}

func TestSearchNoMatch(t *testing.T) {
	out, errOut, err := executeRoot(t, history, "nothing-like-this")
	var exitErr exitcode.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitcode.NoMatch {
		t.Fatalf("expected NoMatch exit error, got %v", err)
	}
	if out != "" || errOut != "" {
		t.Fatalf("expected no output, got stdout %q stderr %q", out, errOut)
	}
}

func TestSearchEmptyInput(t *testing.T) {
	out, _, err := executeRoot(t, "", "x")
	var exitErr exitcode.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitcode.NoMatch {
		t.Fatalf("expected NoMatch exit error, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestSearchFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"exclusive flags", []string{"x", "--commit-hash", "--print-fields", "diff"}, "commit-hash"},
		{"unknown section", []string{"x", "--match-fields", "diff,hunk"}, "--match-fields"},
		{"unknown strategy", []string{"x", "--invalid-utf8", "ignore"}, "--invalid-utf8"},
		{"bad glob", []string{"x", "--path", "[oops"}, "invalid path glob"},
		{"missing pattern", nil, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRoot(t, history, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			testutil.AssertContains(t, err.Error(), tt.want)
		})
	}
}

func TestSearchParseErrorNamesInput(t *testing.T) {
	_, _, err := executeRoot(t, "garbage\n", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	testutil.AssertContains(t, err.Error(), "<stdin>: line 1")
}

func TestSearchFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.patch")
	second := filepath.Join(dir, "second.patch")
	if err := os.WriteFile(first, []byte(history), 0600); err != nil {
		t.Fatal(err)
	}
	other := "commit ffff\ndiff --git a/x b/x\n@@ -1 +1 @@\n+AIPlayer again\n"
	if err := os.WriteFile(second, []byte(other), 0600); err != nil {
		t.Fatal(err)
	}

	out, _, err := executeRoot(t, "commit eeee\ndiff --git a/y b/y\n@@ -1 +1 @@\n-AIPlayer\n", "AIPlayer", "--commit-hash", first, "-", second)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertOutput(t, out, "bcd581d9af\neeee\nffff\n")

	_, _, err = executeRoot(t, "", "AIPlayer", filepath.Join(dir, "missing.patch"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	testutil.AssertContains(t, err.Error(), "missing.patch")
}

func TestSearchConfigDefaults(t *testing.T) {
	t.Setenv("HUNK_MATCH_FIELDS", "patch_header")
	t.Setenv("HUNK_PRINT_FIELDS", "diff")
	out, _, err := executeRoot(t, history, "docs only")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertOutput(t, out, "+See docs.\n")

	// Flags override the environment.
	out, _, err = executeRoot(t, history, "docs only", "--print-fields", "patch_header")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertContains(t, out, "commit 39512ad045\n")
	testutil.AssertNotContains(t, out, "See docs")
}

func TestSearchDebugLogging(t *testing.T) {
	_, errOut, err := executeRoot(t, history, "AIPlayer", "--debug")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertContains(t, errOut, "patch done")
	testutil.AssertContains(t, errOut, "<stdin>")
}

func TestConfigCommand(t *testing.T) {
	out, _, err := executeRoot(t, "", "config")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertContains(t, out, "match_fields: diff\n")
	testutil.AssertContains(t, out, "print_fields: patch_header\n")
	testutil.AssertContains(t, out, "invalid_utf8: strict\n")

	out, _, err = executeRoot(t, "", "config", "path")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertContains(t, out, filepath.Join("hunk", "config.yaml"))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeRoot(t, "", "version")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertContains(t, out, "hunk version dev")
}
