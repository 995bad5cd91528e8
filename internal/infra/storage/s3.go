package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
)

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client  putter
	bucket  string
	baseURL string
}

// NewS3Store targets AWS or any S3 compatible endpoint (path style).
func NewS3Store(opts S3Options) *S3Store {
	s3opts := s3.Options{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
	}
	base := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)

	if opts.Endpoint != "" {
		s3opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3opts.UsePathStyle = true
		base = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &S3Store{
		client:  s3.New(s3opts),
		bucket:  opts.Bucket,
		baseURL: base,
	}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *S3Store) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

var _ domain.ObjectStore = (*S3Store)(nil)
