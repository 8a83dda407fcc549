package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"

	"luastyle/internal/domain/valueobjects"
)

const (
	DefaultMaxSide     = 1024
	DefaultJPEGQuality = 80
	// DefaultMaxPixels bounds the decoded size of an input, about 200MB as RGBA.
	DefaultMaxPixels = 50_000_000
)

// ErrTooManyPixels is wrapped in a *DecodeError when the header claims more
// pixels than the normalizer accepts.
var ErrTooManyPixels = errors.New("image dimensions exceed the pixel budget")

// DecodeError reports input that is not a decodable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image could not be decoded: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ImageNormalizer bounds the longer side of an image and re-encodes it as JPEG.
type ImageNormalizer struct {
	maxSide   int
	quality   int
	maxPixels int64
}

// NewImageNormalizer falls back to the package defaults for any
// non-positive or out-of-range argument.
func NewImageNormalizer(maxSide, quality, maxPixels int) *ImageNormalizer {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &ImageNormalizer{
		maxSide:   maxSide,
		quality:   quality,
		maxPixels: int64(maxPixels),
	}
}

// Normalize decodes raw, downsizes it when either side exceeds the bound and
// returns a JPEG encoding. Images are never upscaled. Transparent areas are
// flattened onto white since JPEG carries no alpha.
func (n *ImageNormalizer) Normalize(raw []byte) (*valueobjects.ImageData, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Err: valueobjects.ErrEmptyImage}
	}

	// Check the header first so oversized images are never decoded.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > n.maxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)}
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	bounds := src.Bounds()
	width, height := ScaledSize(bounds.Dx(), bounds.Dy(), n.maxSide)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}

	return valueobjects.NewImageData(buf.Bytes())
}

// ScaledSize returns the dimensions after clamping the longer side to maxSide
// with the aspect ratio preserved. Sides never drop below one pixel.
func ScaledSize(width, height, maxSide int) (int, int) {
	longest := max(width, height)
	if longest <= maxSide {
		return width, height
	}

	scale := float64(maxSide) / float64(longest)
	scaledWidth := max(1, int(math.Round(float64(width)*scale)))
	scaledHeight := max(1, int(math.Round(float64(height)*scale)))
	return scaledWidth, scaledHeight
}
