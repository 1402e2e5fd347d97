package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adaosilva/imoveis-backend/internal/platform/gcp"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const storageModeInline = "inline"

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorInvalidConfig       StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveObjectStore returns nil in inline mode, where images are kept as
// data URLs on the property row.
func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg StorageConfig) (gcp.BucketService, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" || mode == storageModeInline {
		log.Info("Object storage disabled; images stored inline")
		return nil, nil
	}
	storageCfg := gcp.ObjectStorageConfig{
		Mode:          gcp.ObjectStorageMode(mode),
		Bucket:        strings.TrimSpace(cfg.Bucket),
		EmulatorHost:  strings.TrimSpace(cfg.EmulatorHost),
		PublicBaseURL: strings.TrimSpace(cfg.PublicBaseURL),
		Credentials:   strings.TrimSpace(cfg.Credentials),
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"bucket", storageCfg.Bucket,
		"emulator_host", storageCfg.EmulatorHost,
	)

	bucket, err := newBucketService(ctx, log, storageCfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		default:
			code = StorageProviderBootstrapErrorInvalidConfig
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
