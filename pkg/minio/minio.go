package minio

import (
	"bytes"
	"context"
	"fmt"

	"taskforge-controlplane/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("minio.client", fx.Provide(NewObjectStore))

// ObjectStore keeps raw uploads for later inspection.
type ObjectStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
}

type noopStore struct{}

func (noopStore) Put(context.Context, string, []byte, string) error { return nil }

type bucketStore struct {
	client *minio.Client
	bucket string
}

// NewObjectStore returns a MinIO-backed store, or a no-op store when
// MINIO.ENDPOINT is empty.
func NewObjectStore(lc fx.Lifecycle, c *config.Config) (ObjectStore, error) {
	if c.Minio.Endpoint == "" {
		zap.L().Info("MinIO not configured, uploads will not be archived")
		return noopStore{}, nil
	}

	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	store := &bucketStore{client: client, bucket: c.Minio.BucketName}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.ensureBucket(ctx)
		},
	})

	zap.L().Info("MinIO client initialized", zap.String("endpoint", c.Minio.Endpoint), zap.String("bucket", c.Minio.BucketName))
	return store, nil
}

func (s *bucketStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func (s *bucketStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}
