// Package export renders list screens as CSV and delivers the result to a
// local directory or an S3-compatible bucket.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
)

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes t to w. Fields containing commas, quotes or newlines are
// quoted.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// Encode renders t as CSV bytes.
func Encode(t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Prompts renders the prompts screen.
func Prompts(prompts []*model.Prompt) Table {
	t := Table{Header: []string{"ID", "Timestamp", "Employee", "AI Tool", "Prompt Text", "Severity", "Client", "Device ID"}}
	for _, p := range prompts {
		t.Rows = append(t.Rows, []string{
			p.ID,
			timestamp(p.Timestamp),
			p.EmployeeName,
			p.AITool,
			p.PromptText,
			string(p.FlagSeverity),
			p.ClientName,
			p.DeviceID,
		})
	}
	return t
}

// Clients renders the clients screen.
func Clients(clients []*model.Client) Table {
	t := Table{Header: []string{"ID", "Name", "Client ID", "Contact Email", "Contact Phone", "Status", "Created"}}
	for _, c := range clients {
		t.Rows = append(t.Rows, []string{
			c.ID, c.Name, c.ClientID, c.ContactEmail, c.ContactPhone, c.Status(), timestamp(c.CreatedAt),
		})
	}
	return t
}

// Users renders the users screen.
func Users(users []*model.User) Table {
	t := Table{Header: []string{"ID", "Email", "First Name", "Last Name", "Role", "Client", "Active", "Last Login", "Created"}}
	for _, u := range users {
		lastLogin := ""
		if u.LastLogin != nil {
			lastLogin = timestamp(*u.LastLogin)
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(u.ID), u.Email, u.FirstName, u.LastName, string(u.Role), u.ClientID,
			strconv.FormatBool(u.IsActive), lastLogin, timestamp(u.CreatedAt),
		})
	}
	return t
}

// Invoices renders the invoices screen.
func Invoices(invoices []*model.Invoice) Table {
	t := Table{Header: []string{"Number", "Client", "Amount", "Status", "Due Date", "Paid Date", "Items"}}
	for _, inv := range invoices {
		paid := ""
		if inv.PaidDate != nil {
			paid = inv.PaidDate.String()
		}
		t.Rows = append(t.Rows, []string{
			inv.Number, inv.ClientName, money(inv.Amount), string(inv.Status),
			inv.DueDate.String(), paid, strconv.Itoa(len(inv.Items)),
		})
	}
	return t
}

// PaymentMethods renders the payment methods screen.
func PaymentMethods(methods []*model.PaymentMethod) Table {
	t := Table{Header: []string{"ID", "Type", "Brand", "Last 4", "Expiry", "Default", "Active"}}
	for _, p := range methods {
		t.Rows = append(t.Rows, []string{
			p.ID, string(p.Type), p.Brand, p.Last4, p.Expiry(),
			strconv.FormatBool(p.IsDefault), strconv.FormatBool(p.IsActive),
		})
	}
	return t
}
