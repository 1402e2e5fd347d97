package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

type ObjectStorageConfig struct {
	Mode          ObjectStorageMode
	Bucket        string
	EmulatorHost  string
	PublicBaseURL string
	CDNDomain     string
	Credentials   string
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	switch mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
		return true
	default:
		return false
	}
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorInvalidPublicBase   ObjectStorageConfigErrorCode = "invalid_public_base_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid storage.mode=%q (allowed: %q, %q)",
			e.Mode,
			ObjectStorageModeGCS,
			ObjectStorageModeGCSEmulator,
		)
	case ObjectStorageConfigErrorMissingBucket:
		return "storage.bucket is required for object storage"
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("storage.mode=%q requires storage.emulator_host", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid storage.emulator_host=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ObjectStorageConfigErrorInvalidPublicBase:
		return fmt.Sprintf("invalid storage.public_base_url=%q; expected absolute URL", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	if !IsSupportedObjectStorageMode(cfg.Mode) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: string(cfg.Mode)}
	}
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" && !isAbsoluteURL(raw) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidPublicBase, Mode: string(cfg.Mode), Value: raw}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	if strings.TrimSpace(cfg.EmulatorHost) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	if !isAbsoluteURL(cfg.EmulatorHost) {
		return &ObjectStorageConfigError{
			Code:  ObjectStorageConfigErrorInvalidEmulatorHost,
			Mode:  string(cfg.Mode),
			Value: cfg.EmulatorHost,
		}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
