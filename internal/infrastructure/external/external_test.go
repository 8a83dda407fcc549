package external

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
)

func testPNGData(t *testing.T) *valueobjects.ImageData {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	img, err := valueobjects.NewImageData(buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to create ImageData: %v", err)
	}
	return img
}

func testVariantRequest(t *testing.T) *entities.VariantRequest {
	t.Helper()
	request, err := entities.NewTryOnRequest(testPNGData(t), testPNGData(t), valueobjects.AccessorySelection{})
	if err != nil {
		t.Fatalf("NewTryOnRequest() error = %v", err)
	}
	return entities.NewVariantRequest(request, valueobjects.DefaultVariants[0], "directive text")
}

func testPNGBase64(t *testing.T) string {
	return base64.StdEncoding.EncodeToString(testPNGData(t).Data())
}

