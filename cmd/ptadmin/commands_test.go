package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/client"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/config"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/fetch"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/session"
)

// fakeAPI serves canned bodies keyed by "METHOD /path" and records requests.
type fakeAPI struct {
	routes map[string]string

	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	key   string
	query string
	body  string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{key: key, query: r.URL.RawQuery, body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	resp, ok := f.routes[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"route not found"}`))
		return
	}
	_, _ = w.Write([]byte(resp))
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

// recordingPublisher captures published changes.
type recordingPublisher struct {
	mu      sync.Mutex
	topics  []string
	changes []events.Change
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if c, ok := event.(events.Change); ok {
		p.changes = append(p.changes, c)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// useFakeAPI points the command globals at a fake API for one test.
func useFakeAPI(t *testing.T, routes map[string]string) *fakeAPI {
	t.Helper()
	api := &fakeAPI{routes: routes}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	apiClient = client.NewHTTPClient(srv.URL, "tok-test", client.WithLogger(logger))
	cfg = &config.Config{APIURL: srv.URL, WatchInterval: time.Hour}
	jsonOutput = false
	t.Cleanup(func() {
		apiClient = nil
		publisher = nil
		jsonOutput = false
	})
	return api
}

// run executes a standalone command with args and returns its stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const clientsBody = `{"success":true,"data":[
	{"_id":"c1","name":"Acme","clientId":"ACME","isActive":true,"createdAt":"2024-01-03T00:00:00Z"},
	{"_id":"c2","name":"Globex","clientId":"GLBX","isActive":false,"createdAt":"2024-01-01T00:00:00Z"},
	{"_id":"c3","name":"Initech","clientId":"INIT","isActive":true,"createdAt":"2024-01-02T00:00:00Z"}
]}`

func TestClientsList_FiltersSortsAndPagesLocally(t *testing.T) {
	api := useFakeAPI(t, map[string]string{"GET /clients": clientsBody})

	out, err := run(t, clientsLister.listCmd(), "-f", "status=active", "--sort", "name:asc", "--limit", "1", "--page", "2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Initech") || strings.Contains(out, "Acme") || strings.Contains(out, "Globex") {
		t.Errorf("page 2 of active clients by name should be Initech only:\n%s", out)
	}
	if !strings.Contains(out, "Showing 2-2 of 2") {
		t.Errorf("missing footer:\n%s", out)
	}
	if reqs := api.recorded(); len(reqs) != 1 || reqs[0].query != "" {
		t.Errorf("clients are fetched whole, got %+v", reqs)
	}
}

func TestClientsList_JSON(t *testing.T) {
	useFakeAPI(t, map[string]string{"GET /clients": clientsBody})
	jsonOutput = true

	out, err := run(t, clientsLister.listCmd(), "--search", "glob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"total": 1`) || !strings.Contains(out, `"name": "Globex"`) {
		t.Errorf("unexpected JSON:\n%s", out)
	}
}

func TestPromptsList_SendsSerializedQuery(t *testing.T) {
	api := useFakeAPI(t, map[string]string{
		"GET /prompts": `{"success":true,"data":{"prompts":[
			{"id":"p1","promptText":"share the api key","employeeName":"Ana","aiTool":"ChatGPT","flagSeverity":"high","timestamp":"2024-05-01T08:00:00Z"}
		],"total":41}}`,
	})

	out, err := run(t, promptsLister.listCmd(), "-f", "severity=high", "--only", "flaggedOnly", "--page", "2", "--limit", "10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	reqs := api.recorded()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	want := "page=2&limit=10&sortBy=timestamp&sortOrder=desc&severity=high&flagged=true"
	if reqs[0].query != want {
		t.Errorf("query = %q, want %q", reqs[0].query, want)
	}
	if !strings.Contains(out, "share the api key") || !strings.Contains(out, "Showing 11-11 of 41") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestList_APIErrorMessage(t *testing.T) {
	useFakeAPI(t, map[string]string{
		"GET /users":   `{"success":false,"message":"insufficient permissions"}`,
		"GET /clients": clientsBody,
	})

	_, err := run(t, usersLister.listCmd())
	if err == nil || err.Error() != "insufficient permissions" {
		t.Errorf("err = %v, want the API message", err)
	}
}

func TestUsersList_ResolvesClientNames(t *testing.T) {
	useFakeAPI(t, map[string]string{
		"GET /users": `{"success":true,"data":{"users":[
			{"id":7,"email":"ana@acme.io","firstName":"Ana","lastName":"Li","role":"admin","clientId":"ACME","isActive":true,"createdAt":"2024-01-01T00:00:00Z"}
		]}}`,
		"GET /clients": clientsBody,
	})

	out, err := run(t, usersLister.listCmd())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Acme") {
		t.Errorf("client name not resolved:\n%s", out)
	}
}

func TestUsersList_ToleratesMissingClients(t *testing.T) {
	useFakeAPI(t, map[string]string{
		"GET /users": `{"success":true,"data":{"users":[{"id":7,"email":"ana@acme.io","role":"user","clientId":"ACME"}]}}`,
	})

	out, err := run(t, usersLister.listCmd())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "ACME") {
		t.Errorf("client id should be shown when names are unavailable:\n%s", out)
	}
}

func TestClientsExport_WritesFilteredView(t *testing.T) {
	useFakeAPI(t, map[string]string{"GET /clients": clientsBody})
	dir := t.TempDir()

	out, err := run(t, clientsLister.exportCmd(), "-f", "status=inactive", "--out", dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "clients-*.csv"))
	if len(matches) != 1 {
		t.Fatalf("export files = %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "c2,Globex") {
		t.Errorf("csv = %q", data)
	}
	if !strings.Contains(out, matches[0]) {
		t.Errorf("output should name the file: %q", out)
	}
}

func TestPromptsExport_UsesServerExport(t *testing.T) {
	api := useFakeAPI(t, map[string]string{"GET /prompts/export": "ID,Timestamp\np1,2024-05-01\n"})
	dir := t.TempDir()

	if _, err := run(t, promptsLister.exportCmd(), "--search", "key", "--page", "3", "--out", dir); err != nil {
		t.Fatalf("export: %v", err)
	}
	reqs := api.recorded()
	if len(reqs) != 1 || reqs[0].query != "search=key" {
		t.Errorf("export should send only the filter params, got %+v", reqs)
	}
}

func TestExport_S3RequiresBucket(t *testing.T) {
	useFakeAPI(t, map[string]string{"GET /clients": clientsBody})
	if _, err := run(t, clientsLister.exportCmd(), "--s3"); err == nil || !strings.Contains(err.Error(), "DASHBOARD_EXPORT_S3_BUCKET") {
		t.Errorf("err = %v", err)
	}
}

func TestClientCreate_AnnouncesChange(t *testing.T) {
	api := useFakeAPI(t, map[string]string{
		"POST /clients": `{"success":true,"data":{"_id":"c9","name":"Umbrella","clientId":"UMB","isActive":true}}`,
	})
	pub := &recordingPublisher{}
	publisher = pub

	cmd := clientCreateCmd
	cmd.SetContext(context.Background())
	t.Cleanup(func() { _ = cmd.Flags().Set("email", "") })
	if err := cmd.Flags().Set("email", "ops@umbrella.io"); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, []string{"Umbrella"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	reqs := api.recorded()
	if len(reqs) != 1 || !strings.Contains(reqs[0].body, `"contactEmail":"ops@umbrella.io"`) {
		t.Errorf("requests = %+v", reqs)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "dashboard.clients.created" || pub.changes[0].ID != "c9" {
		t.Errorf("published %v %+v", pub.topics, pub.changes)
	}
}

// startNATS runs an in-process NATS server for one test.
func startNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestClientCreate_PublishesOverNATS(t *testing.T) {
	useFakeAPI(t, map[string]string{
		"POST /clients": `{"success":true,"data":{"_id":"c9","name":"Umbrella","clientId":"UMB","isActive":true}}`,
	})
	url := startNATS(t)
	cfg.NATSURL = url
	var logs bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&logs, nil))
	t.Cleanup(func() {
		if publisher != nil {
			_ = publisher.Close()
		}
	})

	watcher, err := events.DialNATS(url)
	if err != nil {
		t.Fatalf("dialing watcher: %v", err)
	}
	defer watcher.Close()
	changes, stop, err := watcher.Changes("clients")
	if err != nil {
		t.Fatalf("Changes: %v", err)
	}
	defer stop()

	cmd := clientCreateCmd
	cmd.SetContext(context.Background())
	t.Cleanup(func() { _ = cmd.Flags().Set("email", "") })
	if err := cmd.Flags().Set("email", "ops@umbrella.io"); err != nil {
		t.Fatal(err)
	}
	cmd.SetOut(io.Discard)
	if err := cmd.RunE(cmd, []string{"Umbrella"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case c := <-changes:
		if c.Screen != "clients" || c.Action != events.ActionCreated || c.ID != "c9" {
			t.Errorf("got %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the created change")
	}
	if strings.Contains(logs.String(), "level=WARN") {
		t.Errorf("unexpected warning:\n%s", logs.String())
	}
}

func TestClientCreate_ValidatesBeforeRequest(t *testing.T) {
	api := useFakeAPI(t, nil)
	cmd := clientCreateCmd
	cmd.SetContext(context.Background())
	t.Cleanup(func() { _ = cmd.Flags().Set("email", "") })
	_ = cmd.Flags().Set("email", "not-an-email")

	if err := cmd.RunE(cmd, []string{"Umbrella"}); err == nil {
		t.Fatal("expected validation error")
	}
	if n := len(api.recorded()); n != 0 {
		t.Errorf("made %d requests for an invalid form", n)
	}
}

func TestRenderWatch_SilentAfterInterrupt(t *testing.T) {
	useFakeAPI(t, nil)
	st := screen.Clients.Schema.Default()
	failed := fetch.Snapshot[page[*model.Client]]{Status: fetch.Failure, Message: "performing request: context canceled"}

	var out, errOut bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	render := clientsLister.renderWatch(ctx, &out, &errOut, st)

	render(fetch.Snapshot[page[*model.Client]]{Status: fetch.Failure, Message: "server unavailable"})
	if got := errOut.String(); got != "Error: server unavailable\n" {
		t.Errorf("stderr = %q", got)
	}

	errOut.Reset()
	cancel()
	render(failed)
	if errOut.Len() != 0 {
		t.Errorf("interrupted refresh printed %q", errOut.String())
	}
}

func TestLoadBillingSummary(t *testing.T) {
	useFakeAPI(t, map[string]string{
		"GET /billing/stats": `{"success":true,"data":{"totalRevenue":1200,"outstandingInvoices":2}}`,
		"GET /billing/invoices": `{"success":true,"data":[
			{"id":"i1","number":"INV-1","amount":100,"status":"paid","dueDate":"2024-01-10"},
			{"id":"i2","number":"INV-2","amount":200,"status":"pending","dueDate":"2024-03-10"}
		]}`,
		"GET /billing/payment-methods": `{"success":true,"data":[{"id":"m1","type":"card","brand":"Visa","last4":"4242"}]}`,
	})

	sum, err := loadBillingSummary(context.Background())
	if err != nil {
		t.Fatalf("loadBillingSummary: %v", err)
	}
	if sum.Stats.TotalRevenue != 1200 || len(sum.Methods) != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Invoices) != 2 || sum.Invoices[0].Number != "INV-2" {
		t.Errorf("invoices should be newest due first: %+v", sum.Invoices)
	}
}

func TestLoadBillingSummary_FailsIfAnyPartFails(t *testing.T) {
	useFakeAPI(t, map[string]string{
		"GET /billing/stats":    `{"success":true,"data":{}}`,
		"GET /billing/invoices": `{"success":true,"data":[]}`,
	})
	if _, err := loadBillingSummary(context.Background()); err == nil {
		t.Fatal("expected error when payment methods fail")
	}
}

func TestNeedsSession(t *testing.T) {
	if !needsSession(clientShowCmd) {
		t.Error("clients show should need a session")
	}
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd, refreshCmd, logoutCmd, whoamiCmd, healthCmd, screensCmd} {
		if needsSession(cmd) {
			t.Errorf("%s should run without a session", cmd.Name())
		}
	}
}

func TestRoot_ExpiredSessionFailsBeforeRequest(t *testing.T) {
	api := &fakeAPI{routes: map[string]string{"GET /clients": clientsBody}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DASHBOARD_API_URL", srv.URL)
	t.Setenv("DASHBOARD_TOKEN", expired)

	rootCmd.SetArgs([]string{"clients", "show", "c1"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	err = rootCmd.Execute()
	if !errors.Is(err, session.ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
	if n := len(api.recorded()); n != 0 {
		t.Errorf("made %d requests with an expired session", n)
	}
}

func TestRoot_ShowWithOpaqueToken(t *testing.T) {
	api := &fakeAPI{routes: map[string]string{
		"GET /clients/c1": `{"success":true,"data":{"_id":"c1","name":"Acme","clientId":"ACME","isActive":true}}`,
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("DASHBOARD_API_URL", srv.URL)
	t.Setenv("DASHBOARD_TOKEN", "opaque-api-key")
	t.Setenv("NO_COLOR", "1")

	var out bytes.Buffer
	rootCmd.SetArgs([]string{"clients", "show", "c1"})
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Acme") || !strings.Contains(out.String(), "active") {
		t.Errorf("output:\n%s", out.String())
	}
}
