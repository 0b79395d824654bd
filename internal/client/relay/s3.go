package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/jotkeeper/internal/common"
)

// S3Config points the relay at an S3-compatible bucket (MinIO works).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Store implements Store on S3-compatible object storage. Each mailbox
// and signaling slot is one object; S3's per-key last-write-wins semantics
// match the relay contract directly.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading relay credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads the value, retrying transient failures with fibonacci backoff.
// Configuration problems (missing bucket, bad credentials) are not retried;
// they come back immediately as a classified *UploadError.
func (s *S3Store) Put(ctx context.Context, key string, value []byte) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(value),
		})
		if err == nil {
			return nil
		}
		reason := classifyUploadErr(err)
		if reason == ReasonUnknown {
			return retry.RetryableError(err)
		}
		return &UploadError{Reason: reason, Err: err}
	})
	if err == nil {
		return nil
	}

	var ue *UploadError
	if errors.As(err, &ue) {
		return ue
	}
	return &UploadError{Reason: ReasonUnknown, Err: err}
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("key %q: %w", key, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("relay read %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("relay read %q: %w", key, err)
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("relay delete %q: %w", key, err)
	}
	return nil
}

// classifyUploadErr maps S3 API error codes onto the upload failure
// taxonomy.
func classifyUploadErr(err error) UploadReason {
	var noBucket *s3types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return ReasonMissingStore
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return ReasonMissingStore
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return ReasonPermission
		}
	}
	return ReasonUnknown
}
