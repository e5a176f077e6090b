package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object describes a stored object as returned by a bucket listing.
type Object struct {
	Name string
	Size int64
}

// Client is a thin wrapper around the AWS SDK v2 S3 client bound to a single
// bucket, tuned for MinIO/SeaweedFS style endpoints with path-style access.
type Client struct {
	api      *s3.Client
	presign  *s3.PresignClient
	bucket   string
	endpoint string
}

// NewClientFromEnv initialises a Client using environment variables expected by the project.
//
// Required environment variables:
//   - S3_ENDPOINT: host:port or full URL to the S3 endpoint.
//   - S3_ACCESS_KEY / S3_SECRET_KEY: static credentials.
//   - S3_BUCKET: bucket holding the collectible images.
//
// Optional environment variables:
//   - S3_REGION (default "us-east-1").
//   - S3_DISABLE_TLS (bool; default false) to toggle TLS usage.
//   - S3_FORCE_PATH_STYLE (bool; default true).
func NewClientFromEnv() (*Client, error) {
	endpoint := strings.TrimSpace(os.Getenv("S3_ENDPOINT"))
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := strings.TrimSpace(os.Getenv("S3_BUCKET"))
	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	if endpoint == "" {
		return nil, errors.New("S3_ENDPOINT is required")
	}
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}
	if bucket == "" {
		return nil, errors.New("S3_BUCKET is required")
	}

	disableTLS, _ := strconv.ParseBool(os.Getenv("S3_DISABLE_TLS"))
	forcePathStyle := true
	if v := strings.TrimSpace(os.Getenv("S3_FORCE_PATH_STYLE")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			forcePathStyle = parsed
		}
	}

	scheme := "https"
	if disableTLS {
		scheme = "http"
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = forcePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &Client{
		api:      client,
		presign:  s3.NewPresignClient(client),
		bucket:   bucket,
		endpoint: strings.TrimRight(endpoint, "/"),
	}, nil
}

// List returns up to limit objects under prefix, skipping the first offset
// entries. The offset is applied client-side while paging, matching the
// listing contract of the hosted object stores this project targets.
func (c *Client) List(ctx context.Context, prefix string, limit, offset int) ([]Object, error) {
	if c == nil {
		return nil, errors.New("nil client")
	}
	if limit <= 0 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	want := offset + limit
	var collected []Object

	input := &s3.ListObjectsV2Input{
		Bucket: &c.bucket,
	}
	if prefix != "" {
		input.Prefix = &prefix
	}

	paginator := s3.NewListObjectsV2Paginator(c.api, input)
	for paginator.HasMorePages() && len(collected) < want {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			size := int64(0)
			if obj.Size != nil {
				size = *obj.Size
			}
			collected = append(collected, Object{Name: *obj.Key, Size: size})
			if len(collected) >= want {
				break
			}
		}
	}

	if offset >= len(collected) {
		return nil, nil
	}
	return collected[offset:], nil
}

// PublicURL returns the stable path-style URL for an object in the bucket.
func (c *Client) PublicURL(name string) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, name)
}

// PutObject uploads data to the bucket under the given key.
func (c *Client) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if c == nil {
		return errors.New("nil client")
	}

	input := &s3.PutObjectInput{
		Bucket:        &c.bucket,
		Key:           &key,
		Body:          r,
		ContentLength: &size,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	_, err := c.api.PutObject(ctx, input)
	return err
}

// PresignPut generates a presigned PUT URL for uploading an object within the provided TTL.
func (c *Client) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if c == nil {
		return "", errors.New("nil client")
	}

	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
