package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/RegionalHealth/RH-Backend/internal/config"
	"github.com/RegionalHealth/RH-Backend/internal/ledger"
)

var ErrBucketRequired = errors.New("s3 bucket required")

// objectAPI is the slice of the S3 client the snapshot store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 writes the ledger snapshot as one JSON object. Works against AWS S3
// or MinIO with path-style addressing.
type S3 struct {
	client objectAPI
	bucket string
	key    string
}

// NewS3 builds a client from the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}
	region := cfg.Region
	if region == "" {
		region = config.DefaultS3Region
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3WithClient(client, cfg.Bucket, cfg.Key), nil
}

func newS3WithClient(client objectAPI, bucket, key string) *S3 {
	if key == "" {
		key = config.DefaultS3Key
	}
	return &S3{client: client, bucket: bucket, key: key}
}

// LoadResources returns nil when the snapshot object does not exist yet.
func (s *S3) LoadResources(ctx context.Context) ([]ledger.Resource, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	var resources []ledger.Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return resources, nil
}

func (s *S3) SaveResources(ctx context.Context, resources []ledger.Resource) error {
	data, err := json.Marshal(resources)
	if err != nil {
		return fmt.Errorf("encode resources: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
