package cmd

import (
	"strings"

	"github.com/samsaffron/hunk/internal/decode"
	"github.com/samsaffron/hunk/internal/patch"
	"github.com/spf13/cobra"
)

func registerCompletions(cmd *cobra.Command) {
	for _, name := range []string{"match-fields", "print-fields"} {
		if err := cmd.RegisterFlagCompletionFunc(name, SectionListCompletion); err != nil {
			panic(err)
		}
	}
	if err := cmd.RegisterFlagCompletionFunc("invalid-utf8", InvalidUTF8Completion); err != nil {
		panic(err)
	}
}

// SectionListCompletion completes the last item of a comma-separated section
// list, skipping sections already listed.
func SectionListCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, last = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	for _, item := range strings.Split(prefix, ",") {
		used[strings.TrimSpace(item)] = true
	}

	var completions []string
	for _, name := range patch.SectionNames() {
		if used[name] || !strings.HasPrefix(name, last) {
			continue
		}
		completions = append(completions, prefix+name)
	}
	// No space so the user can append ",".
	return completions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// InvalidUTF8Completion completes --invalid-utf8 values.
func InvalidUTF8Completion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, name := range decode.StrategyNames {
		if strings.HasPrefix(name, toComplete) {
			completions = append(completions, name)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
