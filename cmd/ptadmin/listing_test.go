package main

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
)

// parsedState registers the query flags for schema, parses args and builds
// the resulting state.
func parsedState(t *testing.T, schema query.Schema, args ...string) (query.State, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addQueryFlags(cmd, schema)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return listState(cmd, schema)
}

func TestListState_Defaults(t *testing.T) {
	st, err := parsedState(t, screen.Prompts.Schema)
	if err != nil {
		t.Fatalf("listState: %v", err)
	}
	want := query.Serialize(screen.Prompts.Schema, screen.Prompts.Schema.Default()).Encode()
	if got := query.Serialize(screen.Prompts.Schema, st).Encode(); got != want {
		t.Errorf("defaults = %q, want %q", got, want)
	}
}

func TestListState_AllFlags(t *testing.T) {
	st, err := parsedState(t, screen.Prompts.Schema,
		"--search", "  password ",
		"-f", "severity=high",
		"-f", "tool=ChatGPT",
		"--only", "flaggedOnly",
		"--from", "2024-01-01",
		"--to", "2024-01-31",
		"--sort", "employeeName:asc",
		"--limit", "50",
		"--page", "3",
	)
	if err != nil {
		t.Fatalf("listState: %v", err)
	}
	got := query.Serialize(screen.Prompts.Schema, st).Encode()
	want := "page=3&limit=50&sortBy=employeeName&sortOrder=asc&search=password&tool=ChatGPT&severity=high" +
		"&startDate=2024-01-01&endDate=2024-01-31&flagged=true"
	if got != want {
		t.Errorf("query =\n  %s\nwant\n  %s", got, want)
	}
}

func TestListState_ChangeWithoutPageResetsPage(t *testing.T) {
	st, err := parsedState(t, screen.Clients.Schema, "--query", "page=4&limit=10", "--search", "acme")
	if err != nil {
		t.Fatalf("listState: %v", err)
	}
	if st.Page != 1 || st.PageSize != 10 || st.Search != "acme" {
		t.Errorf("state = page %d size %d search %q, want page 1 size 10 search acme", st.Page, st.PageSize, st.Search)
	}

	st, err = parsedState(t, screen.Clients.Schema, "--query", "page=4&limit=10")
	if err != nil {
		t.Fatalf("listState: %v", err)
	}
	if st.Page != 4 {
		t.Errorf("page = %d, want 4 from --query", st.Page)
	}
}

func TestListState_BareSortIsDescending(t *testing.T) {
	st, err := parsedState(t, screen.Users.Schema, "--sort", "email")
	if err != nil {
		t.Fatalf("listState: %v", err)
	}
	if st.Sort != (query.Sort{Field: "email", Direction: query.Desc}) {
		t.Errorf("sort = %v, want email:desc", st.Sort)
	}
}

func TestListState_Errors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		schema query.Schema
		args   []string
		check  func(error) bool
	}{
		{"UnknownFilter", screen.Clients.Schema, []string{"-f", "color=red"}, query.IsInvalidQueryKey},
		{"MalformedFilter", screen.Clients.Schema, []string{"-f", "status"}, nil},
		{"UnknownFlag", screen.PaymentMethods.Schema, []string{"--only", "expiredOnly"}, query.IsInvalidQueryKey},
		{"UnknownSort", screen.Invoices.Schema, []string{"--sort", "color"}, query.IsInvalidQueryKey},
		{"BadDirection", screen.Invoices.Schema, []string{"--sort", "amount:up"}, query.IsInvalidQueryKey},
		{"BadDate", screen.Invoices.Schema, []string{"--from", "01/02/2024"}, nil},
		{"ZeroPage", screen.Invoices.Schema, []string{"--page", "0"}, func(err error) bool {
			return errors.Is(err, query.ErrInvalidPagination)
		}},
		{"ZeroLimit", screen.Invoices.Schema, []string{"--limit", "0"}, func(err error) bool {
			return errors.Is(err, query.ErrInvalidPagination)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsedState(t, tc.schema, tc.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tc.check != nil && !tc.check(err) {
				t.Errorf("unexpected error type: %v", err)
			}
		})
	}
}

func TestListState_EmptyDateClearsBound(t *testing.T) {
	st, err := parsedState(t, screen.Invoices.Schema, "--query", "startDate=2024-01-01&endDate=2024-02-01", "--from", "")
	if err != nil {
		t.Fatalf("listState: %v", err)
	}
	if st.DateRange.Start != nil {
		t.Errorf("start = %v, want nil", st.DateRange.Start)
	}
	if st.DateRange.End == nil || st.DateRange.End.Format(query.DateLayout) != "2024-02-01" {
		t.Errorf("end = %v, want 2024-02-01", st.DateRange.End)
	}
}

func TestAddQueryFlags_OnlyDeclared(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addQueryFlags(cmd, screen.Clients.Schema)
	for _, name := range []string{"from", "to", "only"} {
		if cmd.Flags().Lookup(name) != nil {
			t.Errorf("clients screen should not have --%s", name)
		}
	}
	if f := cmd.Flags().Lookup("limit"); f == nil || f.DefValue != "25" {
		t.Errorf("--limit default = %v, want 25", f)
	}
}

func TestSplitField(t *testing.T) {
	for _, tc := range []struct {
		in     string
		k, v   string
		wantOK bool
	}{
		{"status=active", "status", "active", true},
		{"client=a=b", "client", "a=b", true},
		{"status=", "status", "", true},
		{"=active", "", "", false},
		{"status", "", "", false},
	} {
		k, v, ok := splitField(tc.in)
		if k != tc.k || v != tc.v || ok != tc.wantOK {
			t.Errorf("splitField(%q) = %q, %q, %v", tc.in, k, v, ok)
		}
	}
}
