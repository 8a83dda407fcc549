package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"luastyle/internal/domain/valueobjects"
)

// ErrInputsMissing is returned when a try-on is attempted without both images.
var ErrInputsMissing = errors.New("both subject and garment images are required")

type TryOnRequestID string

// TryOnRequest is the immutable input of one orchestrated try-on.
type TryOnRequest struct {
	id           TryOnRequestID
	subjectImage *valueobjects.ImageData
	garmentImage *valueobjects.ImageData
	accessories  valueobjects.AccessorySelection
	createdAt    time.Time
}

func NewTryOnRequest(
	subjectImage *valueobjects.ImageData,
	garmentImage *valueobjects.ImageData,
	accessories valueobjects.AccessorySelection,
) (*TryOnRequest, error) {
	if subjectImage == nil || garmentImage == nil {
		return nil, ErrInputsMissing
	}

	return &TryOnRequest{
		id:           TryOnRequestID("req_" + uuid.NewString()),
		subjectImage: subjectImage,
		garmentImage: garmentImage,
		accessories:  accessories,
		createdAt:    time.Now(),
	}, nil
}

func (r *TryOnRequest) ID() TryOnRequestID {
	return r.id
}

func (r *TryOnRequest) SubjectImage() *valueobjects.ImageData {
	return r.subjectImage
}

func (r *TryOnRequest) GarmentImage() *valueobjects.ImageData {
	return r.garmentImage
}

func (r *TryOnRequest) Accessories() valueobjects.AccessorySelection {
	return r.accessories
}

func (r *TryOnRequest) CreatedAt() time.Time {
	return r.createdAt
}
