package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/ui"
)

// helpRule rewrites every match of re in the help text.
type helpRule struct {
	re     *regexp.Regexp
	render func(groups []string) string
}

// helpRules are applied in order to Cobra's plain help output.
var helpRules = []helpRule{
	// Section headers such as "Screens:" or "Flags:".
	{
		re:     regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`),
		render: func(g []string) string { return ui.RenderAccent(g[1]) },
	},
	// Command names: two-space indent, a word, then the description column.
	{
		re:     regexp.MustCompile(`(?m)^(  )([a-z][\w-]*)(  )`),
		render: func(g []string) string { return g[1] + ui.RenderCommand(g[2]) + g[3] },
	},
	// Flag value types, e.g. "--search string".
	{
		re:     regexp.MustCompile(`(--?[\w-]+\s+)(string|int|duration|stringSlice|stringArray)\b`),
		render: func(g []string) string { return g[1] + ui.RenderMuted(g[2]) },
	},
	// Defaults, e.g. (default "desc").
	{
		re:     regexp.MustCompile(`\(default [^)]*\)`),
		render: func(g []string) string { return ui.RenderMuted(g[0]) },
	},
}

// colorizedHelpFunc returns a help function that colors Cobra's usage text
// when stdout is a color terminal.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	for _, r := range helpRules {
		s = r.re.ReplaceAllStringFunc(s, func(match string) string {
			groups := r.re.FindStringSubmatch(match)
			if groups == nil {
				return match
			}
			return r.render(groups)
		})
	}
	return strings.TrimRight(s, " ")
}
