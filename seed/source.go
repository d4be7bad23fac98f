package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxListingBytes caps how much of a listing response is read.
const maxListingBytes = 8 << 20

// Entry is one item of the external listing, in picsum's shape.
type Entry struct {
	ID          string `json:"id" validate:"required"`
	Author      string `json:"author"`
	Width       int    `json:"width" validate:"gte=0"`
	Height      int    `json:"height" validate:"gte=0"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

type Source interface {
	Fetch(ctx context.Context, limit int) ([]Entry, error)
}

// HTTPSource reads a picsum-style listing endpoint, passing limit as a
// query parameter.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSource(endpoint string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Fetch(ctx context.Context, limit int) ([]Entry, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: unexpected status %d", resp.StatusCode)
	}
	return decodeListing(resp.Body, limit)
}

type s3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a JSON listing snapshot stored in a bucket, for
// deployments that cannot reach the public listing API.
type S3Source struct {
	client s3GetObjectAPI
	bucket string
	key    string
}

func NewS3Source(client s3GetObjectAPI, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Fetch(ctx context.Context, limit int) ([]Entry, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()
	return decodeListing(out.Body, limit)
}

// NewSource picks the source for a SEED_SOURCE value: s3://bucket/key or
// an http(s) URL.
func NewSource(ctx context.Context, raw string, timeout time.Duration) (Source, error) {
	if rest, ok := strings.CutPrefix(raw, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return nil, fmt.Errorf("seed source %q: expected s3://bucket/key", raw)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewS3Source(s3.NewFromConfig(cfg), bucket, key), nil
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("seed source %q: expected http(s) URL or s3://bucket/key", raw)
	}
	return NewHTTPSource(raw, timeout), nil
}

func decodeListing(r io.Reader, limit int) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(io.LimitReader(r, maxListingBytes)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
