package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/idgen"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements DashboardClient against the REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ DashboardClient = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a client targeting baseURL (e.g. "http://localhost:3000").
// When token is non-empty it is sent as a bearer token on every request.
func NewHTTPClient(baseURL, token string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Clients ---

func (c *HTTPClient) ListClients(ctx context.Context) ([]*model.Client, error) {
	var clients []*model.Client
	if err := c.doData(ctx, http.MethodGet, "/clients", nil, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *HTTPClient) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var cl model.Client
	if err := c.doData(ctx, http.MethodGet, "/clients/"+url.PathEscape(id), nil, nil, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *HTTPClient) CreateClient(ctx context.Context, form *model.ClientForm) (*model.Client, error) {
	var cl model.Client
	if err := c.doData(ctx, http.MethodPost, "/clients", nil, form, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *HTTPClient) UpdateClient(ctx context.Context, id string, upd *model.ClientUpdate) (*model.Client, error) {
	var cl model.Client
	if err := c.doData(ctx, http.MethodPatch, "/clients/"+url.PathEscape(id), nil, upd, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *HTTPClient) DeleteClient(ctx context.Context, id string) error {
	return c.doData(ctx, http.MethodDelete, "/clients/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) ActivateClient(ctx context.Context, id string) error {
	return c.doData(ctx, http.MethodPatch, "/clients/"+url.PathEscape(id)+"/activate", nil, nil, nil)
}

func (c *HTTPClient) DeactivateClient(ctx context.Context, id string) error {
	return c.doData(ctx, http.MethodPatch, "/clients/"+url.PathEscape(id)+"/deactivate", nil, nil, nil)
}

// --- Prompts ---

func (c *HTTPClient) ListPrompts(ctx context.Context, params query.Params) (*model.PromptPage, error) {
	var page model.PromptPage
	if err := c.doData(ctx, http.MethodGet, "/prompts", params, nil, &page); err != nil {
		return nil, err
	}
	if page.Prompts == nil {
		page.Prompts = []*model.Prompt{}
	}
	return &page, nil
}

func (c *HTTPClient) GetPrompt(ctx context.Context, id string) (*model.Prompt, error) {
	var p model.Prompt
	if err := c.doData(ctx, http.MethodGet, "/prompts/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UpdatePrompt(ctx context.Context, id string, upd *model.PromptUpdate) (*model.Prompt, error) {
	var p model.Prompt
	if err := c.doData(ctx, http.MethodPatch, "/prompts/"+url.PathEscape(id), nil, upd, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) DeletePrompt(ctx context.Context, id string) error {
	return c.doData(ctx, http.MethodDelete, "/prompts/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) PromptStats(ctx context.Context) (*model.PromptStats, error) {
	var stats model.PromptStats
	if err := c.doData(ctx, http.MethodGet, "/prompts/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ExportPrompts downloads the server-rendered export for the given filter
// params. Paging and sort params are not sent.
func (c *HTTPClient) ExportPrompts(ctx context.Context, params query.Params) ([]byte, error) {
	return c.doRaw(ctx, "/prompts/export", params)
}

// --- Users ---

func (c *HTTPClient) ListUsers(ctx context.Context) ([]*model.User, error) {
	var resp struct {
		Users []*model.User `json:"users"`
	}
	if err := c.doData(ctx, http.MethodGet, "/users", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, form *model.UserForm) (*model.User, error) {
	var u model.User
	if err := c.doData(ctx, http.MethodPost, "/users", nil, form, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int, upd *model.UserUpdate) (*model.User, error) {
	var u model.User
	if err := c.doData(ctx, http.MethodPatch, userPath(id), nil, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int) error {
	return c.doData(ctx, http.MethodDelete, userPath(id), nil, nil, nil)
}

func (c *HTTPClient) ActivateUser(ctx context.Context, id int) error {
	return c.doData(ctx, http.MethodPatch, userPath(id)+"/activate", nil, nil, nil)
}

func (c *HTTPClient) DeactivateUser(ctx context.Context, id int) error {
	return c.doData(ctx, http.MethodPatch, userPath(id)+"/deactivate", nil, nil, nil)
}

func userPath(id int) string {
	return "/users/" + strconv.Itoa(id)
}

// --- Billing ---

func (c *HTTPClient) ListInvoices(ctx context.Context) ([]*model.Invoice, error) {
	var invoices []*model.Invoice
	if err := c.doData(ctx, http.MethodGet, "/billing/invoices", nil, nil, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (c *HTTPClient) DownloadInvoice(ctx context.Context, id string) ([]byte, error) {
	return c.doRaw(ctx, "/billing/invoices/"+url.PathEscape(id)+"/download", nil)
}

func (c *HTTPClient) ListPaymentMethods(ctx context.Context) ([]*model.PaymentMethod, error) {
	var methods []*model.PaymentMethod
	if err := c.doData(ctx, http.MethodGet, "/billing/payment-methods", nil, nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

func (c *HTTPClient) CreatePaymentMethod(ctx context.Context, form *model.PaymentForm) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	if err := c.doData(ctx, http.MethodPost, "/billing/payment-methods", nil, form, &pm); err != nil {
		return nil, err
	}
	return &pm, nil
}

func (c *HTTPClient) UpdatePaymentMethod(ctx context.Context, id string, form *model.PaymentForm) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	if err := c.doData(ctx, http.MethodPatch, "/billing/payment-methods/"+url.PathEscape(id), nil, form, &pm); err != nil {
		return nil, err
	}
	return &pm, nil
}

func (c *HTTPClient) DeletePaymentMethod(ctx context.Context, id string) error {
	return c.doData(ctx, http.MethodDelete, "/billing/payment-methods/"+url.PathEscape(id), nil, nil, nil)
}

func (c *HTTPClient) BillingStats(ctx context.Context) (*model.BillingStats, error) {
	var stats model.BillingStats
	if err := c.doData(ctx, http.MethodGet, "/billing/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- Analytics ---

func (c *HTTPClient) AnalyticsStats(ctx context.Context) (*model.AnalyticsStats, error) {
	var stats model.AnalyticsStats
	if err := c.doData(ctx, http.MethodGet, "/prompts/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) ChartData(ctx context.Context) (*model.ChartData, error) {
	var chart model.ChartData
	if err := c.doData(ctx, http.MethodGet, "/analytics/chart-data", nil, nil, &chart); err != nil {
		return nil, err
	}
	return &chart, nil
}

func (c *HTTPClient) Trends(ctx context.Context) (model.Trends, error) {
	env, err := c.Request(ctx, http.MethodGet, "/analytics/trends", nil, nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// --- Auth ---

func (c *HTTPClient) Login(ctx context.Context, creds *model.Credentials) (*model.LoginResult, error) {
	var res model.LoginResult
	if err := c.doData(ctx, http.MethodPost, "/auth/login", nil, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg *model.Registration) (*model.AuthUser, error) {
	var u model.AuthUser
	if err := c.doData(ctx, http.MethodPost, "/auth/register", nil, reg, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResult, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var res model.RefreshResult
	if err := c.doData(ctx, http.MethodPost, "/auth/refresh", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	env, err := c.Request(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Status string `json:"status"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &resp) == nil && resp.Status != "" {
		return resp.Status, nil
	}
	if env.Message != "" {
		return env.Message, nil
	}
	return "ok", nil
}

// --- internal helpers ---

// APIError is a response the server answered with an HTTP error status or
// with success set to false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// TransportError is a request that never produced a response: the server was
// unreachable, the request timed out or was cancelled, or the body could not
// be read or decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Request performs one API call and returns the response envelope. Bodies
// that are not wrapped in an envelope are returned as Data of a successful
// one.
func (c *HTTPClient) Request(ctx context.Context, method, path string, params query.Params, body any) (*Envelope, error) {
	respBody, status, err := c.do(ctx, method, path, params, body, "application/json")
	if err != nil {
		return nil, err
	}

	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: errorMessage(status, respBody)}
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return &Envelope{Success: true}, nil
	}

	var wire struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(respBody, &wire); err != nil {
		// Arrays and scalars are never envelopes.
		if json.Valid(respBody) {
			return &Envelope{Success: true, Data: respBody}, nil
		}
		return nil, &TransportError{Op: "decoding response", Err: err}
	}
	if wire.Success == nil {
		return &Envelope{Success: true, Data: respBody}, nil
	}
	env := &Envelope{Success: *wire.Success, Data: wire.Data, Message: wire.Message, Error: wire.Error}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return env, &APIError{StatusCode: status, Message: msg}
	}
	return env, nil
}

// doData performs a request and decodes the envelope's data into result.
// If result is nil the data is discarded.
func (c *HTTPClient) doData(ctx context.Context, method, path string, params query.Params, body, result any) error {
	env, err := c.Request(ctx, method, path, params, body)
	if err != nil {
		return err
	}
	if result == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return &TransportError{Op: "decoding response", Err: err}
	}
	return nil
}

// doRaw performs a GET whose response is a file rather than an envelope.
func (c *HTTPClient) doRaw(ctx context.Context, path string, params query.Params) ([]byte, error) {
	respBody, status, err := c.do(ctx, http.MethodGet, path, params, nil, "*/*")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: errorMessage(status, respBody)}
	}
	return respBody, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params query.Params, body any, accept string) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID, err := idgen.RequestID()
	if err == nil {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, 0, &TransportError{Op: "performing request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: "reading response", Err: err}
	}
	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)
	return respBody, resp.StatusCode, nil
}

// errorMessage picks the message of an error response: the body's message
// field, then its error field, then the raw body, then the status text.
func errorMessage(status int, body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && !json.Valid(body) {
		return s
	}
	return http.StatusText(status)
}
