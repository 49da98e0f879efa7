package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/mlebedeva/projectdock/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Options configure the S3-backed Store. BaseEndpoint is optional and used
// for S3-compatible backends (e.g. MinIO) in development.
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// S3Store implements Store over an AWS S3 (or compatible) backend.
type S3Store struct {
	client *s3.Client
	region string
}

// NewS3Store constructs an explicitly configured store instance. There is no
// package-level client; the instance is injected into the services at
// startup.
func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey, opts.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, region: opts.Region}, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", common.ErrUpstreamStore, key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		if isMissing(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrUpstreamStore, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrUpstreamStore, key, err)
	}
	return data, nil
}

func (s *S3Store) Head(ctx context.Context, bucket, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		if isMissing(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: head %s: %v", common.ErrUpstreamStore, key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrUpstreamStore, key, err)
	}
	return nil
}

func (s *S3Store) DeleteBatch(ctx context.Context, bucket string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for i := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: &keys[i]})
	}

	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: &bucket,
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return fmt.Errorf("%w: delete batch: %v", common.ErrUpstreamStore, err)
	}
	return nil
}

func (s *S3Store) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %v", common.ErrUpstreamStore, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	return keys, nil
}

func (s *S3Store) ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key)
}

// isMissing reports whether an S3 error means "no such object".
func isMissing(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}
