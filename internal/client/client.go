// Package client provides the interface CLI commands use to talk to the
// prompt-tracker admin API and an HTTP/JSON implementation of it.
package client

import (
	"context"
	"encoding/json"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
)

// Envelope is the wrapper the API puts around every JSON response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Transport performs one API request and returns the decoded envelope.
// Params are appended to the path in their given order. A non-nil body is
// sent as JSON.
type Transport interface {
	Request(ctx context.Context, method, path string, params query.Params, body any) (*Envelope, error)
}

// DashboardClient is the interface all ptadmin commands use to reach the API.
type DashboardClient interface {
	Transport

	// Clients
	ListClients(ctx context.Context) ([]*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	CreateClient(ctx context.Context, form *model.ClientForm) (*model.Client, error)
	UpdateClient(ctx context.Context, id string, upd *model.ClientUpdate) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) error
	ActivateClient(ctx context.Context, id string) error
	DeactivateClient(ctx context.Context, id string) error

	// Prompts
	ListPrompts(ctx context.Context, params query.Params) (*model.PromptPage, error)
	GetPrompt(ctx context.Context, id string) (*model.Prompt, error)
	UpdatePrompt(ctx context.Context, id string, upd *model.PromptUpdate) (*model.Prompt, error)
	DeletePrompt(ctx context.Context, id string) error
	PromptStats(ctx context.Context) (*model.PromptStats, error)
	ExportPrompts(ctx context.Context, params query.Params) ([]byte, error)

	// Users
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, form *model.UserForm) (*model.User, error)
	UpdateUser(ctx context.Context, id int, upd *model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id int) error
	ActivateUser(ctx context.Context, id int) error
	DeactivateUser(ctx context.Context, id int) error

	// Billing
	ListInvoices(ctx context.Context) ([]*model.Invoice, error)
	DownloadInvoice(ctx context.Context, id string) ([]byte, error)
	ListPaymentMethods(ctx context.Context) ([]*model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, form *model.PaymentForm) (*model.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, form *model.PaymentForm) (*model.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id string) error
	BillingStats(ctx context.Context) (*model.BillingStats, error)

	// Analytics
	AnalyticsStats(ctx context.Context) (*model.AnalyticsStats, error)
	ChartData(ctx context.Context) (*model.ChartData, error)
	Trends(ctx context.Context) (model.Trends, error)

	// Auth
	Login(ctx context.Context, creds *model.Credentials) (*model.LoginResult, error)
	Register(ctx context.Context, reg *model.Registration) (*model.AuthUser, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResult, error)

	// Health
	Health(ctx context.Context) (string, error)
}
