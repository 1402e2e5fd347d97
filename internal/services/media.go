package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/imaging"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const (
	DefaultMaxUploadMB = 15
	// DefaultMaxPixels bounds decoded image size, about 160 MB of RGBA.
	DefaultMaxPixels = 40_000_000
)

// ObjectStore is the subset of the bucket service media needs.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	GetPublicURL(key string) string
}

type MediaConfig struct {
	Desktop        imaging.Variant
	Mobile         imaging.Variant
	Watermark      *imaging.Watermarker
	MaxUploadBytes int64
	MaxPixels      int64
	// KeyPrefix is prepended to object keys, e.g. "properties".
	KeyPrefix string
}

type Upload struct {
	Filename string
	Data     []byte
}

type UploadedImage struct {
	ImageURL string `json:"image_url"`
	ThumbURL string `json:"thumb_url"`
	Order    int    `json:"ordem"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type MediaService interface {
	// ProcessUploads resizes each upload and stores both variants. Results
	// keep the input order with ordem counting up from startOrder.
	ProcessUploads(ctx context.Context, uploads []Upload, startOrder int) ([]UploadedImage, error)
	MaxUploadBytes() int64
}

type mediaService struct {
	log   *logger.Logger
	store ObjectStore
	cfg   MediaConfig
	now   func() time.Time
}

// NewMediaService stores variants in store, or inline as data URLs when
// store is nil.
func NewMediaService(log *logger.Logger, store ObjectStore, cfg MediaConfig) MediaService {
	if cfg.Desktop.Width <= 0 {
		cfg.Desktop = imaging.Variant{Width: 1200, Quality: 80}
	}
	if cfg.Mobile.Width <= 0 {
		cfg.Mobile = imaging.Variant{Width: 600, Quality: 70}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadMB << 20
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "properties"
	}
	return &mediaService{
		log:   log.With("service", "MediaService"),
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (ms *mediaService) MaxUploadBytes() int64 {
	return ms.cfg.MaxUploadBytes
}

func (ms *mediaService) ProcessUploads(ctx context.Context, uploads []Upload, startOrder int) ([]UploadedImage, error) {
	if ctxutil.GetRequestData(ctx) == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	if len(uploads) == 0 {
		return nil, apierr.Invalid("Nenhum arquivo enviado")
	}
	var total int64
	for _, up := range uploads {
		total += int64(len(up.Data))
	}
	if total > ms.cfg.MaxUploadBytes {
		return nil, tooLarge(ms.cfg.MaxUploadBytes)
	}

	out := make([]UploadedImage, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, up := range uploads {
		g.Go(func() error {
			img, err := ms.processOne(gctx, up)
			if err != nil {
				return err
			}
			img.Order = startOrder + i
			out[i] = *img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func tooLarge(limit int64) error {
	return apierr.Coded(http.StatusRequestEntityTooLarge, "payload_too_large",
		fmt.Sprintf("Arquivo excede o limite de %d MB", limit>>20), apierr.ErrInvalidArgument)
}

func (ms *mediaService) processOne(ctx context.Context, up Upload) (*UploadedImage, error) {
	res, err := imaging.Process(ctx, up.Data, imaging.Options{
		Desktop:   ms.cfg.Desktop,
		Mobile:    ms.cfg.Mobile,
		Watermark: ms.cfg.Watermark,
		MaxPixels: ms.cfg.MaxPixels,
	})
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, apierr.Invalid(fmt.Sprintf("Formato de imagem não suportado: %s", path.Base(up.Filename)))
		}
		if errors.Is(err, imaging.ErrTooManyPixels) {
			return nil, apierr.Coded(http.StatusRequestEntityTooLarge, "image_too_large",
				fmt.Sprintf("Imagem com dimensões muito grandes: %s", path.Base(up.Filename)), apierr.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("process %s: %w", up.Filename, err)
	}
	img := &UploadedImage{Width: res.Bounds.Dx(), Height: res.Bounds.Dy()}

	if ms.store == nil {
		img.ImageURL = dataURL(res.Desktop)
		img.ThumbURL = dataURL(res.Mobile)
		return img, nil
	}

	base := path.Join(ms.cfg.KeyPrefix, ms.now().UTC().Format("2006/01"), uuid.NewString())
	desktopKey := base + ".jpg"
	mobileKey := base + "_thumb.jpg"
	if err := ms.store.UploadFile(ctx, desktopKey, bytes.NewReader(res.Desktop)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", desktopKey, err)
	}
	if err := ms.store.UploadFile(ctx, mobileKey, bytes.NewReader(res.Mobile)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", mobileKey, err)
	}
	img.ImageURL = ms.store.GetPublicURL(desktopKey)
	img.ThumbURL = ms.store.GetPublicURL(mobileKey)
	ms.log.Debug("image stored", "key", desktopKey, "bytes", len(res.Desktop)+len(res.Mobile))
	return img, nil
}

func dataURL(jpegBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
}
