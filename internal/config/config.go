package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	APIURL         string        // DASHBOARD_API_URL (default "http://localhost:3000")
	Token          string        // DASHBOARD_TOKEN (optional, overrides the active remote's token)
	NATSURL        string        // DASHBOARD_NATS_URL (optional, empty = watch by polling)
	RequestTimeout time.Duration // DASHBOARD_REQUEST_TIMEOUT (default 30s)
	WatchInterval  time.Duration // DASHBOARD_WATCH_INTERVAL (default 30s; poll period without NATS)

	// Export settings
	ExportS3Bucket   string // DASHBOARD_EXPORT_S3_BUCKET (enables S3 export when set)
	ExportS3Endpoint string // DASHBOARD_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string // DASHBOARD_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Prefix   string // DASHBOARD_EXPORT_S3_PREFIX (default "exports/")
}

// DefaultAPIURL is the backend address when none is configured.
const DefaultAPIURL = "http://localhost:3000"

func Load() (*Config, error) {
	c := &Config{
		APIURL:           envOrDefault("DASHBOARD_API_URL", DefaultAPIURL),
		Token:            os.Getenv("DASHBOARD_TOKEN"),
		NATSURL:          os.Getenv("DASHBOARD_NATS_URL"),
		ExportS3Bucket:   os.Getenv("DASHBOARD_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("DASHBOARD_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("DASHBOARD_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Prefix:   envOrDefault("DASHBOARD_EXPORT_S3_PREFIX", "exports/"),
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("DASHBOARD_API_URL: invalid URL %q", c.APIURL)
	}

	var err error
	if c.RequestTimeout, err = durationEnv("DASHBOARD_REQUEST_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if c.WatchInterval, err = durationEnv("DASHBOARD_WATCH_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if c.WatchInterval <= 0 {
		return nil, fmt.Errorf("DASHBOARD_WATCH_INTERVAL must be positive")
	}

	return c, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
