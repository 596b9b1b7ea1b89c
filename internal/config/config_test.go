package config

import (
	"testing"
	"time"
)

// exportEnvVars lists all export-related env vars that must be cleared between tests.
var exportEnvVars = []string{
	"DASHBOARD_EXPORT_S3_BUCKET", "DASHBOARD_EXPORT_S3_ENDPOINT",
	"DASHBOARD_EXPORT_S3_REGION", "DASHBOARD_EXPORT_S3_PREFIX",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DASHBOARD_API_URL", "DASHBOARD_TOKEN", "DASHBOARD_NATS_URL",
		"DASHBOARD_REQUEST_TIMEOUT", "DASHBOARD_WATCH_INTERVAL",
	} {
		t.Setenv(key, "")
	}
	for _, key := range exportEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name        string
		env         map[string]string
		wantErr     bool
		wantAPIURL  string
		wantNATSURL string
		wantTimeout time.Duration
	}{
		{
			name:        "Defaults",
			env:         map[string]string{},
			wantAPIURL:  DefaultAPIURL,
			wantTimeout: 30 * time.Second,
		},
		{
			name: "Custom",
			env: map[string]string{
				"DASHBOARD_API_URL":         "https://api.example.com/v1",
				"DASHBOARD_NATS_URL":        "nats://localhost:4222",
				"DASHBOARD_REQUEST_TIMEOUT": "5s",
			},
			wantAPIURL:  "https://api.example.com/v1",
			wantNATSURL: "nats://localhost:4222",
			wantTimeout: 5 * time.Second,
		},
		{
			name:    "RelativeURL",
			env:     map[string]string{"DASHBOARD_API_URL": "localhost:3000"},
			wantErr: true,
		},
		{
			name:    "BadTimeout",
			env:     map[string]string{"DASHBOARD_REQUEST_TIMEOUT": "soon"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.APIURL != tc.wantAPIURL {
				t.Errorf("APIURL = %q, want %q", cfg.APIURL, tc.wantAPIURL)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
			if cfg.RequestTimeout != tc.wantTimeout {
				t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, tc.wantTimeout)
			}
		})
	}
}

func TestLoad_WatchInterval(t *testing.T) {
	for _, tc := range []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"Default", "", 30 * time.Second, false},
		{"Custom", "10s", 10 * time.Second, false},
		{"Zero", "0s", 0, true},
		{"Invalid", "often", 0, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			t.Setenv("DASHBOARD_WATCH_INTERVAL", tc.value)

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.WatchInterval != tc.want {
				t.Errorf("WatchInterval = %v, want %v", cfg.WatchInterval, tc.want)
			}
		})
	}
}

func TestLoad_ExportSettings(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("DASHBOARD_EXPORT_S3_BUCKET", "audit")
	t.Setenv("DASHBOARD_EXPORT_S3_ENDPOINT", "http://minio:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExportS3Bucket != "audit" || cfg.ExportS3Endpoint != "http://minio:9000" {
		t.Errorf("bucket/endpoint = %q/%q", cfg.ExportS3Bucket, cfg.ExportS3Endpoint)
	}
	if cfg.ExportS3Region != "us-east-1" {
		t.Errorf("ExportS3Region = %q, want us-east-1", cfg.ExportS3Region)
	}
	if cfg.ExportS3Prefix != "exports/" {
		t.Errorf("ExportS3Prefix = %q, want exports/", cfg.ExportS3Prefix)
	}
}
