package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/idgen"
)

// ContentType is sent with every uploaded export.
const ContentType = "text/csv"

// Destination stores a finished export under name and returns where it went.
type Destination interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// FileName is the default export name for a screen on a given day,
// e.g. "prompts-2024-05-01.csv".
func FileName(screen string, now time.Time) string {
	return screen + "-" + now.Format("2006-01-02") + ".csv"
}

// UniqueFileName is FileName with a random suffix, for destinations where
// two exports on the same day must not replace each other.
func UniqueFileName(screen string, now time.Time) (string, error) {
	suffix, err := idgen.Suffix(6)
	if err != nil {
		return "", err
	}
	return screen + "-" + now.Format("2006-01-02") + "-" + suffix + ".csv", nil
}

// FileDestination writes exports into a local directory.
type FileDestination struct {
	Dir string
}

func (d *FileDestination) Write(ctx context.Context, name string, data []byte) (string, error) {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}

// S3Destination uploads exports to an S3-compatible bucket under a key prefix.
type S3Destination struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Destination, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Key returns the object key an export called name is stored under.
func (d *S3Destination) Key(name string) string {
	return path.Join(d.prefix, name)
}

func (d *S3Destination) Write(ctx context.Context, name string, data []byte) (string, error) {
	key := d.Key(name)
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return "s3://" + d.bucket + "/" + key, nil
}

// Save encodes t and writes it to dest as name.
func Save(ctx context.Context, dest Destination, name string, t Table) (string, error) {
	data, err := Encode(t)
	if err != nil {
		return "", err
	}
	return dest.Write(ctx, name, data)
}
