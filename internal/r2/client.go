// Package r2 archives batch reports in Cloudflare R2 or any S3-compatible bucket.
package r2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mcqengine/internal/models"
)

// ErrNotConfigured is returned by NewClient when the bucket settings are incomplete
var ErrNotConfigured = errors.New("r2 archive not configured")

// Config holds the bucket settings
type Config struct {
	AccountID       string
	Endpoint        string // Overrides the endpoint derived from AccountID
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // Base public URL for the bucket (e.g., https://pub-xxxxxxxx.r2.dev)
	Prefix          string // Key prefix, "reports" when empty
}

// Enabled reports whether enough settings are present to build a client.
func (c Config) Enabled() bool {
	return (c.AccountID != "" || c.Endpoint != "") && c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Client holds the necessary configuration for interacting with Cloudflare R2.
type Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
	prefix    string
}

// NewClient creates and configures a new R2 client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		// R2 endpoint format: https://<ACCOUNT_ID>.r2.cloudflarestorage.com
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 is region-agnostic
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "reports"
	}
	return &Client{
		s3Client:  s3Client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
		prefix:    prefix,
	}, nil
}

// Key returns the object key a run's report is stored under.
func (c *Client) Key(runID string) string {
	return path.Join(c.prefix, runID+".json")
}

// StoreReport uploads report as JSON and returns its public URL, or the
// object key when no public URL is configured.
func (c *Client) StoreReport(ctx context.Context, report models.BatchReport) (string, error) {
	if report.RunID == "" {
		return "", errors.New("report has no run ID")
	}
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	key := c.Key(report.RunID)
	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to R2 (key: %s): %w", key, err)
	}

	if c.publicURL == "" {
		return key, nil
	}
	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		return "", fmt.Errorf("invalid R2 public base URL %q: %w", c.publicURL, err)
	}
	baseURL.Path = path.Join(baseURL.Path, key)
	return baseURL.String(), nil
}
