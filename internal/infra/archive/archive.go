package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver keeps raw webhook bodies for dispute handling.
type Archiver interface {
	Store(ctx context.Context, key string, body []byte) error
}

type Noop struct{}

func (Noop) Store(context.Context, string, []byte) error { return nil }

type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint points at an S3-compatible store (MinIO); empty for AWS.
	Endpoint string
	Prefix   string
	// Timeout bounds one upload; zero means DefaultTimeout.
	Timeout time.Duration
}

const DefaultTimeout = 5 * time.Second

type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client  putter
	bucket  string
	prefix  string
	timeout time.Duration
}

func NewS3Archiver(cfg S3Config) *S3Archiver {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &S3Archiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, timeout: timeout}
}

// ObjectKey lays objects out by day so lifecycle rules can expire them.
func ObjectKey(prefix, key string, at time.Time) string {
	return fmt.Sprintf("%swebhooks/%s/%s.json", prefix, at.UTC().Format("2006/01/02"), key)
}

func (a *S3Archiver) Store(ctx context.Context, key string, body []byte) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ObjectKey(a.prefix, key, time.Now())),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive webhook %s: %w", key, err)
	}
	return nil
}
