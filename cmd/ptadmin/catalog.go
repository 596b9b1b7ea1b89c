package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
)

// screenCommands maps each screen to the command that lists it.
var screenCommands = map[string]string{
	screen.NameClients:        "clients list",
	screen.NamePrompts:        "prompts list",
	screen.NameUsers:          "users list",
	screen.NameInvoices:       "billing invoices list",
	screen.NamePaymentMethods: "billing methods list",
}

// schemaInfo is the JSON form of a screen's query options.
type schemaInfo struct {
	Name        string            `json:"name"`
	Command     string            `json:"command"`
	Filters     map[string]string `json:"filters,omitempty"`
	Flags       map[string]string `json:"flags,omitempty"`
	DateRange   bool              `json:"dateRange"`
	SortFields  []string          `json:"sortFields"`
	DefaultSort string            `json:"defaultSort"`
	PageSize    int               `json:"pageSize"`
}

func describeSchema(s query.Schema) schemaInfo {
	info := schemaInfo{
		Name:        s.Name,
		Command:     "ptadmin " + screenCommands[s.Name],
		DateRange:   s.HasDateRange,
		SortFields:  s.SortFields,
		DefaultSort: s.DefaultSort.String(),
		PageSize:    s.Default().PageSize,
	}
	if len(s.Filters) > 0 {
		info.Filters = make(map[string]string, len(s.Filters))
		for _, f := range s.Filters {
			info.Filters[f.Name] = f.Param
		}
	}
	if len(s.Flags) > 0 {
		info.Flags = make(map[string]string, len(s.Flags))
		for _, f := range s.Flags {
			info.Flags[f.Name] = f.Param
		}
	}
	return info
}

func printSchema(w io.Writer, s query.Schema) {
	names := func(n int, name func(int) string) string {
		if n == 0 {
			return "-"
		}
		out := make([]string, n)
		for i := range out {
			out[i] = name(i)
		}
		return strings.Join(out, ", ")
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Screen:\t%s\n", s.Name)
	fmt.Fprintf(tw, "Command:\tptadmin %s\n", screenCommands[s.Name])
	fmt.Fprintf(tw, "Filters (-f):\t%s\n", names(len(s.Filters), func(i int) string { return s.Filters[i].Name }))
	fmt.Fprintf(tw, "Flags (--only):\t%s\n", names(len(s.Flags), func(i int) string { return s.Flags[i].Name }))
	dates := "no"
	if s.HasDateRange {
		dates = "--from/--to"
	}
	fmt.Fprintf(tw, "Dates:\t%s\n", dates)
	fmt.Fprintf(tw, "Sort:\t%s (default %s)\n", strings.Join(s.SortFields, ", "), s.DefaultSort)
	fmt.Fprintf(tw, "Page size:\t%d\n", s.Default().PageSize)
	tw.Flush()
}

var screensCmd = &cobra.Command{
	Use:         "screens [name]",
	Short:       "Show the filters and sort fields each list accepts",
	GroupID:     "system",
	Args:        cobra.MaximumNArgs(1),
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemas := screen.Schemas()
		if len(args) == 1 {
			s, err := screen.Lookup(args[0])
			if err != nil {
				return err
			}
			schemas = []query.Schema{s}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			infos := make([]schemaInfo, len(schemas))
			for i, s := range schemas {
				infos[i] = describeSchema(s)
			}
			return printJSON(out, infos)
		}
		for i, s := range schemas {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printSchema(out, s)
		}
		return nil
	},
}
