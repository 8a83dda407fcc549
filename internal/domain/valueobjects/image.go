package valueobjects

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

type ImageFormat string

const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
	GIF  ImageFormat = "gif"
	WEBP ImageFormat = "webp"
)

var ErrEmptyImage = errors.New("image data cannot be empty")

// MimeType returns the IANA media type for the format.
func (f ImageFormat) MimeType() string {
	return "image/" + string(f)
}

// Extension returns the file extension used when the image is saved.
func (f ImageFormat) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case WEBP:
		return ".webp"
	default:
		return ".png"
	}
}

// ImageData is an encoded raster together with its decoded header.
type ImageData struct {
	data   []byte
	format ImageFormat
	width  int
	height int
}

func NewImageData(data []byte) (*ImageData, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, format, err := detectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format: %w", err)
	}

	return &ImageData{
		data:   data,
		format: format,
		width:  cfg.Width,
		height: cfg.Height,
	}, nil
}

// ParseDataURI accepts "data:<mime>;base64,<payload>" strings and plain base64.
func ParseDataURI(uri string) (*ImageData, error) {
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		_, after, ok := strings.Cut(uri, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = after
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return NewImageData(data)
}

func (i *ImageData) Data() []byte {
	return i.data
}

func (i *ImageData) Format() ImageFormat {
	return i.format
}

func (i *ImageData) MimeType() string {
	return i.format.MimeType()
}

func (i *ImageData) Width() int {
	return i.width
}

func (i *ImageData) Height() int {
	return i.height
}

func (i *ImageData) Size() int {
	return len(i.data)
}

func (i *ImageData) IsJPEG() bool {
	return i.format == JPEG
}

func (i *ImageData) ToBase64() string {
	return base64.StdEncoding.EncodeToString(i.data)
}

func (i *ImageData) DataURI() string {
	return "data:" + i.MimeType() + ";base64," + i.ToBase64()
}

func detectFormat(data []byte) (image.Config, ImageFormat, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", err
	}

	switch format {
	case "jpeg":
		return cfg, JPEG, nil
	case "png":
		return cfg, PNG, nil
	case "gif":
		return cfg, GIF, nil
	case "webp":
		return cfg, WEBP, nil
	default:
		return image.Config{}, "", fmt.Errorf("unsupported format: %s", format)
	}
}
