package archive

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 is an ObjectStore for any S3-compatible service (MinIO, Supabase Storage, AWS)
type S3 struct {
	client *minio.Client
	bucket string
}

var _ ObjectStore = &S3{}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
}

func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" {
		return nil, goerr.New("S3 endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create S3 client", goerr.V("endpoint", cfg.Endpoint))
	}
	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return goerr.Wrap(err, "failed to put object", goerr.V("bucket", s.bucket), goerr.V("key", key))
	}
	return nil
}
