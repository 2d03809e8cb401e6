package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"youtube-scout/internal/config"
)

// MinIOArchiver keeps a copy of every fetched audio file in an S3-compatible
// bucket so a transcript can be re-run without another download. Archiving is
// best effort; a failed upload never fails the job.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinIOArchiver connects to the configured endpoint and ensures the bucket
// exists.
func NewMinIOArchiver(ctx context.Context, cfg config.ArchiveConfig, logger *zap.Logger) (*MinIOArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOArchiver{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Archive uploads the audio file keyed by source id and date.
func (a *MinIOArchiver) Archive(ctx context.Context, source, audioPath string) error {
	objectName := fmt.Sprintf("audio/%s/%s%s",
		time.Now().Format("2006-01-02"), source, filepath.Ext(audioPath))

	info, err := a.client.FPutObject(ctx, a.bucket, objectName, audioPath, minio.PutObjectOptions{
		ContentType: "audio/mpeg",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}

	a.logger.Debug("archived audio",
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
	)
	return nil
}
