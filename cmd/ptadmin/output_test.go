package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/ui"
)

func init() {
	ui.ForceNoColor()
}

func TestPageLinks(t *testing.T) {
	for _, tc := range []struct {
		current, total int
		want           string
	}{
		{1, 1, ""},
		{1, 3, "[1] 2 3"},
		{5, 12, "1 … 3 4 [5] 6 7 … 12"},
		{12, 12, "1 … 10 11 [12]"},
	} {
		if got := pageLinks(tc.current, tc.total); got != tc.want {
			t.Errorf("pageLinks(%d, %d) = %q, want %q", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestPrintFooter(t *testing.T) {
	st := query.State{Page: 2, PageSize: 10}
	for _, tc := range []struct {
		name         string
		shown, total int
		want         string
	}{
		{"Middle", 10, 35, "Showing 11-20 of 35  1 [2] 3 4"},
		{"Empty", 0, 0, "No results"},
		{"PastEnd", 0, 5, "Page 2 is past the last of 5 results"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printFooter(&buf, st, tc.shown, tc.total)
			if got := strings.TrimSpace(buf.String()); got != tc.want {
				t.Errorf("footer = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPrintFooter_SinglePageHasNoLinks(t *testing.T) {
	var buf bytes.Buffer
	printFooter(&buf, query.State{Page: 1, PageSize: 25}, 3, 3)
	if got := strings.TrimSpace(buf.String()); got != "Showing 1-3 of 3" {
		t.Errorf("footer = %q", got)
	}
}

func TestPrintChart(t *testing.T) {
	var buf bytes.Buffer
	printChart(&buf, &model.ChartData{
		Labels: []string{"Mon", "Tue", "Wed"},
		Datasets: []model.Dataset{
			{Label: "prompts", Data: []float64{12, 7.5, 3}},
			{Label: "flagged", Data: []float64{2}},
		},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if f := strings.Fields(lines[0]); strings.Join(f, " ") != "LABEL PROMPTS FLAGGED" {
		t.Errorf("header = %q", lines[0])
	}
	if f := strings.Fields(lines[2]); strings.Join(f, " ") != "Tue 7.5 -" {
		t.Errorf("row = %q, want missing value shown as -", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("line one\nline   two", 50); got != "line one line two" {
		t.Errorf("truncate collapsed = %q", got)
	}
	if got := truncate(strings.Repeat("x", 60), 10); got != "xxxxxxx..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestPrintUsersTable_ResolvesClientNames(t *testing.T) {
	var buf bytes.Buffer
	printUsersTable(&buf, []*model.User{
		{ID: 1, FirstName: "Ana", LastName: "Li", Email: "ana@acme.io", Role: model.RoleAdmin, ClientID: "c1", IsActive: true},
		{ID: 2, Email: "bo@x.io", Role: model.RoleUser, ClientID: "c9"},
	}, map[string]string{"c1": "Acme"})

	out := buf.String()
	if !strings.Contains(out, "Acme") {
		t.Errorf("client name not resolved:\n%s", out)
	}
	if !strings.Contains(out, "c9") {
		t.Errorf("unknown client id should be shown as is:\n%s", out)
	}
	if !strings.Contains(out, "never") {
		t.Errorf("missing last login should read never:\n%s", out)
	}
}

func TestScreensCatalog(t *testing.T) {
	var buf bytes.Buffer
	printSchema(&buf, screen.Prompts.Schema)
	out := buf.String()
	for _, want := range []string{"ptadmin prompts list", "employee, tool, severity, client", "flaggedOnly", "--from/--to", "timestamp:desc"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	info := describeSchema(screen.PaymentMethods.Schema)
	if info.Command != "ptadmin billing methods list" || info.Flags["activeOnly"] != "active" || info.DateRange {
		t.Errorf("describeSchema = %+v", info)
	}
	for _, s := range screen.Schemas() {
		if screenCommands[s.Name] == "" {
			t.Errorf("screen %s has no list command", s.Name)
		}
	}
}
