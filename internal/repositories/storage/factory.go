package storage

import (
	"context"
	"docshare/internal/config"
	filerepo "docshare/internal/repositories/storage/file"
	s3repo "docshare/internal/repositories/storage/s3"
	"fmt"
)

// New builds the blob store selected by cfg.Type.
func New(ctx context.Context, cfg config.FileStorage) (BlobStore, error) {
	switch cfg.Type {
	case "", "local":
		if cfg.Path == "" {
			return nil, fmt.Errorf("local storage requires a path")
		}
		return filerepo.NewRepository(cfg.Path), nil
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		store, err := s3repo.New(ctx, s3repo.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
