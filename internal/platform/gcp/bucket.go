package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

// BucketService stores listing media in a single GCS bucket.
type BucketService interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	DeleteFile(ctx context.Context, key string) error
	GetPublicURL(key string) string
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	cfg           ObjectStorageConfig
}

func NewBucketService(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.PublicBaseURL == "" && cfg.IsEmulatorMode() {
		cfg.PublicBaseURL = cfg.EmulatorHost
	}

	stClient, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
	)

	return &bucketService{log: serviceLog, storageClient: stClient, cfg: cfg}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptions(cfg.Credentials)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.cfg.Bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := bs.storageClient.Bucket(bs.cfg.Bucket).Object(key).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
	return publicURL(bs.cfg, key)
}

func (bs *bucketService) Close() error {
	return bs.storageClient.Close()
}

func publicURL(cfg ObjectStorageConfig, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	if cfg.IsEmulatorMode() && cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/download/storage/v1/b/%s/o/%s?alt=media",
			cfg.PublicBaseURL, url.PathEscape(cfg.Bucket), url.PathEscape(key))
	}
	if cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, cfg.Bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Bucket, key)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	default:
		return ""
	}
}
