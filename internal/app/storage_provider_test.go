package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	"github.com/adaosilva/imoveis-backend/internal/platform/gcp"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		src  error
		want StorageProviderBootstrapErrorCode
	}{
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{&gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingBucket}, StorageProviderBootstrapErrorInvalidConfig},
		{errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.src)
		var got *StorageProviderBootstrapError
		require.True(t, errors.As(err, &got), "got %T", err)
		assert.Equal(t, tc.want, got.Code)
		assert.ErrorIs(t, err, tc.src)
	}
}

func TestResolveObjectStoreInline(t *testing.T) {
	store, err := resolveObjectStore(context.Background(), testutil.Logger(t), StorageConfig{Mode: "inline"})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestResolveObjectStoreGCSEmulator(t *testing.T) {
	orig := newBucketService
	t.Cleanup(func() { newBucketService = orig })

	var captured gcp.ObjectStorageConfig
	expected := &testBucketService{}
	newBucketService = func(_ context.Context, _ *logger.Logger, cfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		captured = cfg
		return expected, nil
	}

	got, err := resolveObjectStore(context.Background(), testutil.Logger(t), StorageConfig{
		Mode:         "GCS_EMULATOR",
		Bucket:       "imoveis",
		EmulatorHost: " http://fake-gcs:4443 ",
	})
	require.NoError(t, err)
	assert.Same(t, expected, got)
	assert.Equal(t, gcp.ObjectStorageModeGCSEmulator, captured.Mode)
	assert.Equal(t, "http://fake-gcs:4443", captured.EmulatorHost)
}

func TestResolveObjectStoreValidationErrors(t *testing.T) {
	log := testutil.Logger(t)

	_, err := resolveObjectStore(context.Background(), log, StorageConfig{Mode: "gcs_emulator", Bucket: "imoveis"})
	assert.Equal(t, StorageProviderBootstrapErrorMissingEmulatorHost, storageProviderBootstrapErrorCode(err))

	_, err = resolveObjectStore(context.Background(), log, StorageConfig{Mode: "gcs_emulator", Bucket: "imoveis", EmulatorHost: "not-a-url"})
	assert.Equal(t, StorageProviderBootstrapErrorInvalidEmulatorHost, storageProviderBootstrapErrorCode(err))

	_, err = resolveObjectStore(context.Background(), log, StorageConfig{Mode: "s3", Bucket: "imoveis"})
	assert.Equal(t, StorageProviderBootstrapErrorInvalidMode, storageProviderBootstrapErrorCode(err))

	_, err = resolveObjectStore(context.Background(), log, StorageConfig{Mode: "gcs"})
	assert.Equal(t, StorageProviderBootstrapErrorInvalidConfig, storageProviderBootstrapErrorCode(err))
}

type testBucketService struct{}

func (t *testBucketService) UploadFile(context.Context, string, io.Reader) error { return nil }
func (t *testBucketService) DeleteFile(context.Context, string) error            { return nil }
func (t *testBucketService) GetPublicURL(key string) string                     { return "https://cdn/" + key }
func (t *testBucketService) Close() error                                       { return nil }
