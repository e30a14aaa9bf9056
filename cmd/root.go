package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/samsaffron/hunk/internal/config"
	"github.com/samsaffron/hunk/internal/decode"
	"github.com/samsaffron/hunk/internal/exitcode"
	"github.com/samsaffron/hunk/internal/match"
	"github.com/samsaffron/hunk/internal/patch"
	"github.com/samsaffron/hunk/internal/scan"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.Flags().StringVar(&matchFields, "match-fields", "", "Comma-separated sections to search: diff, context, file_header, patch_header (default \"diff\")")
	rootCmd.Flags().StringVar(&printFields, "print-fields", "", "Comma-separated sections to print for a matching patch (default \"patch_header\")")
	rootCmd.Flags().BoolVar(&commitHash, "commit-hash", false, "Print only the commit hash of each matching patch")
	rootCmd.Flags().StringVar(&invalidUTF8, "invalid-utf8", "", "How to handle invalid UTF-8 lines: strict, lossy or skip-line (default \"strict\")")
	rootCmd.Flags().StringVar(&pathGlob, "path", "", "Only search files whose path matches this glob (e.g. '**/*.go')")
	rootCmd.MarkFlagsMutuallyExclusive("print-fields", "commit-hash")

	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	rootCmd.PersistentFlags().StringVar(&memProfile, "memprofile", "", "Write memory profile to file")

	registerCompletions(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:   "hunk PATTERN [FILE...]",
	Short: "Find commits whose patches contain a string",
	Long: `hunk reads "git log -p" output and prints the commits whose patches
contain PATTERN. PATTERN is a literal, case-sensitive string. By default only
added and removed lines are searched and the commit header is printed.

Input is read from the named files, or standard input when none are given
(or the file is "-"). Color escape codes are ignored when matching and kept
when printing.

Defaults for --match-fields, --print-fields and --invalid-utf8 can be set in
the config file (see "hunk config path") or with HUNK_MATCH_FIELDS,
HUNK_PRINT_FIELDS and HUNK_INVALID_UTF8.

Exit status is 0 if a patch was printed, 1 if none matched and 2 on error.

Examples:
  git log -p | hunk AIPlayer
  git log -p | hunk AIPlayer --commit-hash
  git log -p --color=always | hunk TODO --match-fields diff,context --print-fields diff
  git log -p | hunk Fixes --match-fields patch_header --path 'src/**'
  hunk needle history.patch other.patch`,
	Args:              cobra.MinimumNArgs(1),
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startProfiling()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return stopProfiling()
	},
	RunE: runSearch,
}

var (
	matchFields string
	printFields string
	commitHash  bool
	invalidUTF8 string
	pathGlob    string
	debugLog    bool
	cpuProfile  string
	memProfile  string
)

var cpuProfileFile *os.File

func startProfiling() error {
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return err
		}
		cpuProfileFile = f
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return err
		}
	}
	return nil
}

func stopProfiling() error {
	if cpuProfileFile != nil {
		pprof.StopCPUProfile()
		cpuProfileFile.Close()
		cpuProfileFile = nil
	}
	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the root command and exits with hunk's exit status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRunE is skipped when RunE fails.
		_ = stopProfiling()
		var exitErr exitcode.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, "hunk:", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "hunk:", err)
		os.Exit(exitcode.Error)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debugLog {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runSearch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := newLogger(cmd.ErrOrStderr())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := buildOptions(cmd, cfg, args[0])
	if err != nil {
		return err
	}
	opts.Logger = logger
	logger.Debug("search configured",
		"match_on", opts.Engine.Config().MatchOn.String(),
		"commit_hash", commitHash,
		"print", opts.Engine.Config().Output.Print.String(),
		"invalid_utf8", opts.Decode.String(),
		"path", pathGlob)

	inputs := args[1:]
	if len(inputs) == 0 {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("no input: pipe \"git log -p\" into hunk or name files to read")
		}
		inputs = []string{"-"}
	}

	var total scan.Stats
	for _, name := range inputs {
		stats, err := scanInput(cmd, name, opts)
		total.Add(stats)
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(name), err)
		}
		logger.Debug("input done", "input", displayName(name), "lines", stats.Lines, "patches", stats.Patches, "matched", stats.Matched)
	}

	if total.Matched == 0 {
		return exitcode.NoMatches()
	}
	return nil
}

func scanInput(cmd *cobra.Command, name string, opts scan.Options) (scan.Stats, error) {
	if name == "-" {
		return scan.Run(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	}
	f, err := os.Open(name)
	if err != nil {
		return scan.Stats{}, err
	}
	defer f.Close()
	return scan.Run(f, cmd.OutOrStdout(), opts)
}

func displayName(name string) string {
	if name == "-" {
		return "<stdin>"
	}
	return name
}

// buildOptions resolves flags over config values. Flags win when set.
func buildOptions(cmd *cobra.Command, cfg *config.Config, pattern string) (scan.Options, error) {
	flagOr := func(name, flagValue, cfgValue string) string {
		if cmd.Flags().Changed(name) {
			return flagValue
		}
		return cfgValue
	}

	matchOn, err := patch.ParseSections(flagOr("match-fields", matchFields, cfg.MatchFields))
	if err != nil {
		return scan.Options{}, fmt.Errorf("--match-fields: %w", err)
	}

	output := match.Output{Mode: match.PrintCommitHash}
	if !commitHash {
		output.Mode = match.PrintSections
		output.Print, err = patch.ParseSections(flagOr("print-fields", printFields, cfg.PrintFields))
		if err != nil {
			return scan.Options{}, fmt.Errorf("--print-fields: %w", err)
		}
	}

	strategy, err := decode.ParseStrategy(flagOr("invalid-utf8", invalidUTF8, cfg.InvalidUTF8))
	if err != nil {
		return scan.Options{}, fmt.Errorf("--invalid-utf8: %w", err)
	}

	engine, err := match.New(match.Config{
		Pattern:  pattern,
		MatchOn:  matchOn,
		Output:   output,
		PathGlob: pathGlob,
	})
	if err != nil {
		return scan.Options{}, err
	}
	return scan.Options{Decode: strategy, Engine: engine}, nil
}
