package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnsupportedImage is returned when the payload is not a decodable image.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrTooManyPixels is returned when the declared dimensions exceed Options.MaxPixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
)

type Variant struct {
	Width   int
	Height  int
	Quality int
}

type Options struct {
	Desktop   Variant
	Mobile    Variant
	Watermark *Watermarker
	// MaxPixels caps width*height read from the header. Zero disables the check.
	MaxPixels int64
}

// Result holds JPEG-encoded variants of one upload.
type Result struct {
	Format  string
	Desktop []byte
	Mobile  []byte
	Bounds  image.Rectangle
}

// Process decodes raw and renders the desktop and mobile variants in parallel.
func Process(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	res := &Result{Format: format, Bounds: img.Bounds()}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := renderVariant(img, opts.Desktop, opts.Watermark)
		res.Desktop = out
		return err
	})
	g.Go(func() error {
		out, err := renderVariant(img, opts.Mobile, opts.Watermark)
		res.Mobile = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func renderVariant(src image.Image, v Variant, wm *Watermarker) ([]byte, error) {
	img := Resize(src, v.Width)
	if wm != nil {
		img = wm.Apply(img)
	}
	return EncodeJPEG(img, v.Quality)
}

// Resize scales img down to maxWidth keeping the aspect ratio.
// Images already narrower than maxWidth are returned unchanged.
func Resize(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	newH := int(float64(h) * float64(maxWidth) / float64(w))
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodeJPEG flattens transparency onto white and encodes at quality 1..100.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Watermarker stamps a translucent text label in the bottom-right corner.
type Watermarker struct {
	text string
	face font.Face
}

// NewWatermarker loads a TrueType font from fontPath. An empty path uses
// the built-in bitmap face.
func NewWatermarker(text, fontPath string, size float64) (*Watermarker, error) {
	if text == "" {
		return nil, nil
	}
	wm := &Watermarker{text: text}
	if fontPath == "" {
		return wm, nil
	}
	face, err := loadFontFace(fontPath, size)
	if err != nil {
		return nil, err
	}
	wm.face = face
	return wm, nil
}

func (wm *Watermarker) Apply(img image.Image) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	if wm.face != nil {
		dc.SetFontFace(wm.face)
	}
	tw, _ := dc.MeasureString(wm.text)
	margin := float64(b.Dx()) * 0.03
	x := float64(b.Dx()) - tw - margin
	y := float64(b.Dy()) - margin
	dc.SetColor(color.NRGBA{0, 0, 0, 90})
	dc.DrawString(wm.text, x+1, y+1)
	dc.SetColor(color.NRGBA{255, 255, 255, 160})
	dc.DrawString(wm.text, x, y)
	return dc.Image()
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if size <= 0 {
		size = 28
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		Hinting: font.HintingNone,
	}), nil
}
