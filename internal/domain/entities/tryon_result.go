package entities

import (
	"time"

	"github.com/google/uuid"

	"luastyle/internal/domain/valueobjects"
)

type TryOnResultID string

// TryOnResult is the ordered list of images produced for one request.
type TryOnResult struct {
	id        TryOnResultID
	requestID TryOnRequestID
	images    []*valueobjects.ImageData
	createdAt time.Time
}

func NewTryOnResult(requestID TryOnRequestID, images []*valueobjects.ImageData) *TryOnResult {
	return &TryOnResult{
		id:        TryOnResultID("result_" + uuid.NewString()),
		requestID: requestID,
		images:    images,
		createdAt: time.Now(),
	}
}

func (r *TryOnResult) ID() TryOnResultID {
	return r.id
}

func (r *TryOnResult) RequestID() TryOnRequestID {
	return r.requestID
}

func (r *TryOnResult) Images() []*valueobjects.ImageData {
	return r.images
}

func (r *TryOnResult) Len() int {
	return len(r.images)
}

// Image returns the image at index, or nil when out of range.
func (r *TryOnResult) Image(index int) *valueobjects.ImageData {
	if index < 0 || index >= len(r.images) {
		return nil
	}
	return r.images[index]
}

func (r *TryOnResult) CreatedAt() time.Time {
	return r.createdAt
}

func (r *TryOnResult) HasImages() bool {
	return len(r.images) > 0
}
