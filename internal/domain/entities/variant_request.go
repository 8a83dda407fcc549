package entities

import (
	"luastyle/internal/domain/valueobjects"
)

// VariantRequest is what a generation backend receives for one variant:
// the shared try-on payload, the variant framing and the final directive text.
type VariantRequest struct {
	request   *TryOnRequest
	variant   valueobjects.VariantConfig
	directive string
}

func NewVariantRequest(request *TryOnRequest, variant valueobjects.VariantConfig, directive string) *VariantRequest {
	return &VariantRequest{
		request:   request,
		variant:   variant,
		directive: directive,
	}
}

func (r *VariantRequest) Request() *TryOnRequest {
	return r.request
}

func (r *VariantRequest) Variant() valueobjects.VariantConfig {
	return r.variant
}

func (r *VariantRequest) Directive() string {
	return r.directive
}

func (r *VariantRequest) SubjectImage() *valueobjects.ImageData {
	return r.request.SubjectImage()
}

func (r *VariantRequest) GarmentImage() *valueobjects.ImageData {
	return r.request.GarmentImage()
}

// VariantResult holds whatever one variant produced. Zero images is a valid outcome.
type VariantResult struct {
	variant string
	images  []*valueobjects.ImageData
	text    string
}

func NewVariantResult(variant string, images []*valueobjects.ImageData, text string) *VariantResult {
	return &VariantResult{
		variant: variant,
		images:  images,
		text:    text,
	}
}

func (r *VariantResult) Variant() string {
	return r.variant
}

func (r *VariantResult) Images() []*valueobjects.ImageData {
	return r.images
}

func (r *VariantResult) Text() string {
	return r.text
}
