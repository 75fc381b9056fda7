package audio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads recordings to a bucket
type S3Storage struct {
	client    objectPutter
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Storage builds an S3 client from the default AWS configuration chain
// (environment, shared config, instance role). AWS_ENDPOINT_URL selects a compatible store.
func NewS3Storage(ctx context.Context, bucket, prefix, publicURL string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket not configured")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	})
	return newS3Storage(client, bucket, prefix, publicURL), nil
}

func newS3Storage(client objectPutter, bucket, prefix, publicURL string) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Name returns the backend name
func (s *S3Storage) Name() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

// Save uploads the recording. The returned URL uses publicURL when configured, otherwise an
// s3:// reference.
func (s *S3Storage) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := strings.TrimLeft(name, "/")
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	if contentType == "" {
		contentType = "audio/webm"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
