package storage

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"cleanvid/internal/logging"
	"cleanvid/internal/services"
)

// MinioUploader stores objects in an S3-compatible bucket.
type MinioUploader struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// MinioOptions configures the uploader.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinio connects to the object store and makes sure the bucket
// exists.
func NewMinio(ctx context.Context, opts MinioOptions, logger *slog.Logger) (*MinioUploader, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "storage.new", "endpoint and bucket are required", nil)
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "storage.new", "create client", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "", "storage.new", "check bucket", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, services.Wrap(services.ErrUpstream, "", "storage.new", "create bucket", err)
		}
	}

	return &MinioUploader{
		client: client,
		bucket: opts.Bucket,
		logger: logging.NewComponentLogger(logger, "storage"),
	}, nil
}

// Upload stores the file under its derived object key. If an object
// with the same key and size already exists the upload is skipped, so
// re-running a pipeline that already pushed its audio costs nothing.
func (m *MinioUploader) Upload(ctx context.Context, localPath string) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "upload", "stat", "stat local file", err)
	}
	key := ObjectKey(localPath)

	existing, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil && existing.Size == info.Size() {
		m.logger.Debug("object already uploaded", logging.String("key", key))
		return key, nil
	}

	_, err = m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "audio/flac",
	})
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "upload", "put_object", "upload audio", err)
	}
	m.logger.Info("uploaded audio",
		logging.String("key", key),
		logging.Int64("bytes", info.Size()))
	return key, nil
}

// FetchURL returns a presigned GET URL for the object.
func (m *MinioUploader) FetchURL(ctx context.Context, key string, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		lifetime = 6 * time.Hour
	}
	presigned, err := m.client.PresignedGetObject(ctx, m.bucket, key, lifetime, url.Values{})
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "upload", "presign", "presign object", err)
	}
	return presigned.String(), nil
}
