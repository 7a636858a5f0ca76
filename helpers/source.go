package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ============================================================================
// SOURCES — Where fixture bytes come from
// ============================================================================
// A Source is fetched exactly once per load; there is no retry and no
// refresh. OpenSource picks an implementation from a URI:
//
//	data/fig4.json, file:///abs/fig4.json  → FileSource
//	http://..., https://...               → HTTPSource
//	s3://bucket/key                       → S3Source
// ============================================================================

// ErrUnsupportedSource is returned by OpenSource for unknown URI schemes.
var ErrUnsupportedSource = errors.New("helpers: unsupported source")

// Source yields the raw fixture bytes.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// ============================================================================
// FILE
// ============================================================================

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Path)
}

func (f FileSource) String() string { return f.Path }

// BytesSource serves data already in memory. Name is used for logging
// and for format detection by extension.
type BytesSource struct {
	Name string
	Data []byte
}

func (b BytesSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Data, nil
}

func (b BytesSource) String() string { return b.Name }

// ============================================================================
// HTTP
// ============================================================================

// maxFixtureBytes caps remote fixture bodies.
const maxFixtureBytes = 64 << 20

// HTTPSource GETs a URL. Client defaults to a client with a 30s timeout.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

func (h HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = defaultHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", h.URL, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFixtureBytes))
}

func (h HTTPSource) String() string { return h.URL }

// ============================================================================
// S3
// ============================================================================

// ObjectGetter is the slice of the S3 client S3Source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads one object.
type S3Source struct {
	Client ObjectGetter
	Bucket string
	Key    string
}

func (s S3Source) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(io.LimitReader(out.Body, maxFixtureBytes))
}

func (s S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// S3Config holds client construction parameters. Empty fields fall back to
// the environment and the default credentials chain.
type S3Config struct {
	Region          string
	Endpoint        string // optional, for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// S3ConfigFromEnv reads FUSION_S3_REGION, FUSION_S3_ENDPOINT and
// FUSION_S3_PATH_STYLE.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Region:    os.Getenv("FUSION_S3_REGION"),
		Endpoint:  os.Getenv("FUSION_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("FUSION_S3_PATH_STYLE"), "true"),
	}
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// ============================================================================
// URI DISPATCH
// ============================================================================

// OpenSource returns the Source for uri. s3:// URIs build a client from
// S3ConfigFromEnv.
func OpenSource(ctx context.Context, uri string) (Source, error) {
	if !strings.Contains(uri, "://") {
		return FileSource{Path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse source %q: %w", uri, err)
	}

	switch u.Scheme {
	case "file":
		return FileSource{Path: u.Path}, nil
	case "http", "https":
		return HTTPSource{URL: uri}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("%q: want s3://bucket/key: %w", uri, ErrUnsupportedSource)
		}
		client, err := NewS3Client(ctx, S3ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		return S3Source{Client: client, Bucket: u.Host, Key: key}, nil
	}
	return nil, fmt.Errorf("%q: %w", uri, ErrUnsupportedSource)
}
