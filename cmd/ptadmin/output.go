package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/ui"
)

const timeLayout = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return formatTime(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// pageLinks renders the page selector, e.g. "1 … 4 [5] 6 … 12".
func pageLinks(current, total int) string {
	pages := query.VisiblePages(current, total)
	parts := make([]string, len(pages))
	for i, p := range pages {
		switch {
		case p == query.Gap:
			parts[i] = "…"
		case p == current:
			parts[i] = "[" + strconv.Itoa(p) + "]"
		default:
			parts[i] = strconv.Itoa(p)
		}
	}
	return strings.Join(parts, " ")
}

// printFooter prints the "Showing a-b of n" line and the page selector.
func printFooter(w io.Writer, st query.State, shown, total int) {
	if total == 0 {
		fmt.Fprintln(w, ui.RenderMuted("\nNo results"))
		return
	}
	if shown == 0 {
		fmt.Fprintln(w, ui.RenderMuted(fmt.Sprintf("\nPage %d is past the last of %d results", st.Page, total)))
		return
	}
	first := st.Offset() + 1
	last := st.Offset() + shown
	line := ui.RenderMuted(fmt.Sprintf("Showing %d-%d of %d", first, last, total))
	if links := pageLinks(st.Page, query.TotalPages(total, st.PageSize)); links != "" {
		line += "  " + links
	}
	fmt.Fprintf(w, "\n%s\n", line)
}

func printClientsTable(w io.Writer, clients []*model.Client) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCLIENT ID\tCONTACT\tSTATUS\tCREATED")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			truncate(c.Name, 40),
			c.ClientID,
			orDash(c.ContactEmail),
			ui.RenderStatus(c.Status()),
			formatTime(c.CreatedAt),
		)
	}
	tw.Flush()
}

func printClient(w io.Writer, c *model.Client) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	fmt.Fprintf(tw, "Client ID:\t%s\n", c.ClientID)
	if c.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", c.Description)
	}
	fmt.Fprintf(tw, "Email:\t%s\n", orDash(c.ContactEmail))
	fmt.Fprintf(tw, "Phone:\t%s\n", orDash(c.ContactPhone))
	fmt.Fprintf(tw, "Status:\t%s\n", ui.RenderStatus(c.Status()))
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(c.CreatedAt))
	tw.Flush()
}

func printPromptsTable(w io.Writer, prompts []*model.Prompt) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTIME\tEMPLOYEE\tTOOL\tSEVERITY\tCLIENT\tPROMPT")
	for _, p := range prompts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			formatTime(p.Timestamp),
			p.EmployeeName,
			p.AITool,
			ui.RenderSeverity(string(p.FlagSeverity)),
			orDash(p.ClientName),
			truncate(p.PromptText, 50),
		)
	}
	tw.Flush()
}

func printPrompt(w io.Writer, p *model.Prompt) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Time:\t%s\n", formatTime(p.Timestamp))
	fmt.Fprintf(tw, "Employee:\t%s (%s)\n", p.EmployeeName, p.EmployeeID)
	fmt.Fprintf(tw, "Client:\t%s\n", orDash(p.ClientName))
	fmt.Fprintf(tw, "AI tool:\t%s\n", p.AITool)
	fmt.Fprintf(tw, "Device:\t%s\n", orDash(p.DeviceID))
	fmt.Fprintf(tw, "Severity:\t%s\n", ui.RenderSeverity(string(p.FlagSeverity)))
	fmt.Fprintf(tw, "Flagged:\t%t\n", p.IsFlagged)
	if p.Metadata.IPAddress != "" {
		fmt.Fprintf(tw, "IP address:\t%s\n", p.Metadata.IPAddress)
	}
	if p.Metadata.SessionID != "" {
		fmt.Fprintf(tw, "Session:\t%s\n", p.Metadata.SessionID)
	}
	if p.ResponseTime > 0 {
		fmt.Fprintf(tw, "Response time:\t%.0fms\n", p.ResponseTime)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", p.PromptText)
	if p.Response != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", ui.RenderMuted("Response:"), p.Response)
	}
}

func printPromptStats(w io.Writer, s *model.PromptStats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total prompts:\t%d\n", s.TotalPrompts)
	fmt.Fprintf(tw, "Flagged:\t%d\n", s.FlaggedPrompts)
	fmt.Fprintf(tw, "High risk:\t%d\n", s.HighRiskPrompts)
	fmt.Fprintf(tw, "Medium risk:\t%d\n", s.MediumRiskPrompts)
	fmt.Fprintf(tw, "Low risk:\t%d\n", s.LowRiskPrompts)
	tw.Flush()

	if len(s.TopAITools) > 0 {
		fmt.Fprintln(w, ui.RenderAccent("\nTop AI tools:"))
		printToolCounts(w, s.TopAITools)
	}
	if len(s.TopEmployees) > 0 {
		fmt.Fprintln(w, ui.RenderAccent("\nTop employees:"))
		tw = newTable(w)
		for _, e := range s.TopEmployees {
			fmt.Fprintf(tw, "  %s\t%d prompts\t%d flagged\n", e.Name, e.Prompts, e.Flagged)
		}
		tw.Flush()
	}
	if len(s.RecentActivity) > 0 {
		fmt.Fprintln(w, ui.RenderAccent("\nRecent activity:"))
		tw = newTable(w)
		for _, a := range s.RecentActivity {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", formatTime(a.Timestamp), ui.RenderSeverity(a.Severity), a.Description)
		}
		tw.Flush()
	}
}

func printToolCounts(w io.Writer, tools []model.ToolCount) {
	tw := newTable(w)
	for _, t := range tools {
		fmt.Fprintf(tw, "  %s\t%d\t%.1f%%\n", t.Name, t.Count, t.Percentage)
	}
	tw.Flush()
}

// printUsersTable prints users with their client resolved to a name when
// names has one.
func printUsersTable(w io.Writer, users []*model.User, names map[string]string) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCLIENT\tSTATUS\tLAST LOGIN")
	for _, u := range users {
		client := u.ClientID
		if n, ok := names[u.ClientID]; ok {
			client = n
		}
		status := "inactive"
		if u.IsActive {
			status = "active"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID,
			u.FullName(),
			u.Email,
			u.Role,
			orDash(client),
			ui.RenderStatus(status),
			formatTimePtr(u.LastLogin),
		)
	}
	tw.Flush()
}

func printInvoicesTable(w io.Writer, invoices []*model.Invoice) {
	tw := newTable(w)
	fmt.Fprintln(tw, "NUMBER\tCLIENT\tAMOUNT\tSTATUS\tDUE\tPAID")
	for _, inv := range invoices {
		paid := "-"
		if inv.PaidDate != nil {
			paid = inv.PaidDate.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.Number,
			inv.ClientName,
			formatMoney(inv.Amount),
			ui.RenderStatus(string(inv.Status)),
			inv.DueDate.String(),
			paid,
		)
	}
	tw.Flush()
}

func printPaymentMethodsTable(w io.Writer, methods []*model.PaymentMethod) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTYPE\tBRAND\tNUMBER\tEXPIRES\tDEFAULT\tSTATUS")
	for _, m := range methods {
		def := ""
		if m.IsDefault {
			def = "yes"
		}
		status := "inactive"
		if m.IsActive {
			status = "active"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t**** %s\t%s\t%s\t%s\n",
			m.ID, m.Type, m.Brand, m.Last4, m.Expiry(), def, ui.RenderStatus(status))
	}
	tw.Flush()
}

func formatMoney(f float64) string {
	return "$" + strconv.FormatFloat(f, 'f', 2, 64)
}

func printBillingStats(w io.Writer, s *model.BillingStats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total revenue:\t%s\n", formatMoney(s.TotalRevenue))
	fmt.Fprintf(tw, "Monthly revenue:\t%s\n", formatMoney(s.MonthlyRevenue))
	fmt.Fprintf(tw, "Outstanding invoices:\t%d\n", s.OutstandingInvoices)
	fmt.Fprintf(tw, "Overdue amount:\t%s\n", formatMoney(s.OverdueAmount))
	fmt.Fprintf(tw, "Active subscriptions:\t%d\n", s.ActiveSubscriptions)
	tw.Flush()
}

func printAnalyticsStats(w io.Writer, s *model.AnalyticsStats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total prompts:\t%d\n", s.TotalPrompts)
	fmt.Fprintf(tw, "Flagged:\t%d\n", s.FlaggedPrompts)
	fmt.Fprintf(tw, "High risk:\t%d\n", s.HighRiskPrompts)
	tw.Flush()
	if len(s.TopPlatforms) > 0 {
		fmt.Fprintln(w, ui.RenderAccent("\nTop platforms:"))
		printToolCounts(w, s.TopPlatforms)
	}
	if len(s.RecentActivity) > 0 {
		fmt.Fprintln(w, ui.RenderAccent("\nRecent prompts:"))
		tw = newTable(w)
		for _, r := range s.RecentActivity {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				formatTime(r.Timestamp), ui.RenderSeverity(r.RiskLevel), r.AIPlatform, truncate(r.Prompt, 50))
		}
		tw.Flush()
	}
}

// printChart prints one row per label with a column per dataset.
func printChart(w io.Writer, c *model.ChartData) {
	tw := newTable(w)
	header := []string{"LABEL"}
	for _, d := range c.Datasets {
		header = append(header, strings.ToUpper(d.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, label := range c.Labels {
		row := []string{label}
		for _, d := range c.Datasets {
			v := "-"
			if i < len(d.Data) {
				v = strconv.FormatFloat(d.Data[i], 'f', -1, 64)
			}
			row = append(row, v)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}
