// Package screen declares the list screens of the admin dashboard: which
// filters, flags and sort fields each accepts, and for screens that receive a
// whole collection, how records are matched and ordered locally.
package screen

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
)

// Screen names, also used as event subjects and CLI command names.
const (
	NameClients        = "clients"
	NamePrompts        = "prompts"
	NameUsers          = "users"
	NameInvoices       = "invoices"
	NamePaymentMethods = "payment-methods"
)

// Descriptor pairs a screen's query schema with its local filterer.
// ServerPaged screens send the serialized query to the backend and have no
// filterer.
type Descriptor[T any] struct {
	Schema      query.Schema
	Filterer    query.Filterer[T]
	ServerPaged bool
}

// View applies the descriptor to a full collection: it filters and sorts
// items, then cuts the current page. total is the filtered count.
func (d Descriptor[T]) View(items []T, st query.State) (page []T, total int) {
	filtered := d.Filterer.Apply(items, st)
	return d.Filterer.Page(filtered, st), len(filtered)
}

func fold(s string) string { return strings.ToLower(s) }

func compareFold(a, b string) int { return cmp.Compare(fold(a), fold(b)) }

// Clients lists tenants. The backend returns every client.
var Clients = Descriptor[*model.Client]{
	Schema: query.Schema{
		Name:        NameClients,
		Filters:     []query.FilterSpec{{Name: "status", Param: "status"}},
		SortFields:  []string{"name", "createdAt"},
		DefaultSort: query.Sort{Field: "createdAt", Direction: query.Desc},
	},
	Filterer: query.Filterer[*model.Client]{
		Text: []func(*model.Client) string{
			func(c *model.Client) string { return c.Name },
			func(c *model.Client) string { return c.ClientID },
			func(c *model.Client) string { return c.ContactEmail },
		},
		Categorical: map[string]func(*model.Client) string{
			"status": (*model.Client).Status,
		},
		Sort: map[string]func(a, b *model.Client) int{
			"name":      func(a, b *model.Client) int { return compareFold(a.Name, b.Name) },
			"createdAt": func(a, b *model.Client) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
	},
}

// Prompts lists captured prompts. Filtering, sorting and paging happen on
// the server.
var Prompts = Descriptor[*model.Prompt]{
	Schema: query.Schema{
		Name: NamePrompts,
		Filters: []query.FilterSpec{
			{Name: "employee", Param: "employee"},
			{Name: "tool", Param: "tool"},
			{Name: "severity", Param: "severity"},
			{Name: "client", Param: "client"},
		},
		Flags:        []query.FlagSpec{{Name: "flaggedOnly", Param: "flagged"}},
		SortFields:   []string{"timestamp", "employeeName", "aiTool", "flagSeverity"},
		DefaultSort:  query.Sort{Field: "timestamp", Direction: query.Desc},
		HasDateRange: true,
	},
	ServerPaged: true,
}

// Users lists dashboard accounts. The backend returns every user.
var Users = Descriptor[*model.User]{
	Schema: query.Schema{
		Name: NameUsers,
		Filters: []query.FilterSpec{
			{Name: "role", Param: "role"},
			{Name: "client", Param: "client"},
		},
		SortFields:  []string{"email", "lastName", "createdAt", "lastLogin"},
		DefaultSort: query.Sort{Field: "createdAt", Direction: query.Desc},
	},
	Filterer: query.Filterer[*model.User]{
		Text: []func(*model.User) string{
			func(u *model.User) string { return u.FirstName },
			func(u *model.User) string { return u.LastName },
			func(u *model.User) string { return u.Email },
		},
		Categorical: map[string]func(*model.User) string{
			"role":   func(u *model.User) string { return string(u.Role) },
			"client": func(u *model.User) string { return u.ClientID },
		},
		Sort: map[string]func(a, b *model.User) int{
			"email":     func(a, b *model.User) int { return compareFold(a.Email, b.Email) },
			"lastName":  func(a, b *model.User) int { return compareFold(a.LastName, b.LastName) },
			"createdAt": func(a, b *model.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
			"lastLogin": func(a, b *model.User) int { return compareTimePtr(a.LastLogin, b.LastLogin) },
		},
	},
}

// compareTimePtr orders never-set times before any set time.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

// Invoices lists bills. The backend returns every invoice; the date range
// applies to the due date.
var Invoices = Descriptor[*model.Invoice]{
	Schema: query.Schema{
		Name:         NameInvoices,
		Filters:      []query.FilterSpec{{Name: "status", Param: "status"}},
		SortFields:   []string{"dueDate", "amount", "number"},
		DefaultSort:  query.Sort{Field: "dueDate", Direction: query.Desc},
		HasDateRange: true,
	},
	Filterer: query.Filterer[*model.Invoice]{
		Text: []func(*model.Invoice) string{
			func(i *model.Invoice) string { return i.Number },
			func(i *model.Invoice) string { return i.ClientName },
		},
		Categorical: map[string]func(*model.Invoice) string{
			"status": func(i *model.Invoice) string { return string(i.Status) },
		},
		Date: func(i *model.Invoice) time.Time { return i.DueDate.Time },
		Sort: map[string]func(a, b *model.Invoice) int{
			"dueDate": func(a, b *model.Invoice) int { return a.DueDate.Compare(b.DueDate.Time) },
			"amount":  func(a, b *model.Invoice) int { return cmp.Compare(a.Amount, b.Amount) },
			"number":  func(a, b *model.Invoice) int { return cmp.Compare(a.Number, b.Number) },
		},
	},
}

// PaymentMethods lists stored cards and bank accounts.
var PaymentMethods = Descriptor[*model.PaymentMethod]{
	Schema: query.Schema{
		Name:        NamePaymentMethods,
		Filters:     []query.FilterSpec{{Name: "type", Param: "type"}},
		Flags:       []query.FlagSpec{{Name: "activeOnly", Param: "active"}},
		SortFields:  []string{"expiry", "brand"},
		DefaultSort: query.Sort{Field: "expiry", Direction: query.Desc},
	},
	Filterer: query.Filterer[*model.PaymentMethod]{
		Text: []func(*model.PaymentMethod) string{
			func(p *model.PaymentMethod) string { return p.Brand },
			func(p *model.PaymentMethod) string { return p.Last4 },
		},
		Categorical: map[string]func(*model.PaymentMethod) string{
			"type": func(p *model.PaymentMethod) string { return string(p.Type) },
		},
		Flags: map[string]func(*model.PaymentMethod) bool{
			"activeOnly": func(p *model.PaymentMethod) bool { return p.IsActive },
		},
		Sort: map[string]func(a, b *model.PaymentMethod) int{
			"expiry": func(a, b *model.PaymentMethod) int { return cmp.Compare(a.ExpiryKey(), b.ExpiryKey()) },
			"brand":  func(a, b *model.PaymentMethod) int { return compareFold(a.Brand, b.Brand) },
		},
	},
}

// Schemas returns every screen's schema in menu order.
func Schemas() []query.Schema {
	return []query.Schema{
		Clients.Schema,
		Prompts.Schema,
		Users.Schema,
		Invoices.Schema,
		PaymentMethods.Schema,
	}
}

// Lookup returns the schema of the named screen.
func Lookup(name string) (query.Schema, error) {
	i := slices.IndexFunc(Schemas(), func(s query.Schema) bool { return s.Name == name })
	if i < 0 {
		return query.Schema{}, fmt.Errorf("unknown screen %q", name)
	}
	return Schemas()[i], nil
}
