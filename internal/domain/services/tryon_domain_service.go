package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/repositories"
	"luastyle/internal/domain/valueobjects"
)

const DefaultResultLimit = 2

// TryOnDomainService fans a request out to one generation call per variant
// and joins on all of them. Any single variant may fail without affecting
// the others. The call fails only when no variant produced an image.
type TryOnDomainService struct {
	generator   repositories.GenerationService
	variants    []valueobjects.VariantConfig
	limiter     *rate.Limiter
	resultLimit int
}

type Option func(*TryOnDomainService)

func WithVariants(variants ...valueobjects.VariantConfig) Option {
	return func(s *TryOnDomainService) {
		if len(variants) > 0 {
			s.variants = variants
		}
	}
}

// WithRateLimiter paces outbound generation calls. A nil limiter disables pacing.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(s *TryOnDomainService) {
		s.limiter = limiter
	}
}

func WithResultLimit(limit int) Option {
	return func(s *TryOnDomainService) {
		if limit > 0 {
			s.resultLimit = limit
		}
	}
}

func NewTryOnDomainService(generator repositories.GenerationService, opts ...Option) *TryOnDomainService {
	s := &TryOnDomainService{
		generator:   generator,
		variants:    valueobjects.DefaultVariants,
		resultLimit: DefaultResultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TryOn returns up to the result limit images in completion order. Images
// collected before a deadline are still returned. It returns ctx.Err() when
// the context was cancelled or expired with nothing collected, and a
// *GenerationFailure when every variant came back empty.
func (s *TryOnDomainService) TryOn(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error) {
	if request == nil {
		return nil, entities.ErrInputsMissing
	}

	var (
		mu     sync.Mutex
		images []*valueobjects.ImageData
		causes []error
		g      errgroup.Group
	)

	for _, variant := range s.variants {
		g.Go(func() error {
			produced, err := s.generateVariant(ctx, request, variant)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				causes = append(causes, err)
				return nil
			}
			images = append(images, produced...)
			return nil
		})
	}
	_ = g.Wait()

	// A cancelled request is abandoned. A deadline keeps what already arrived.
	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return nil, err
	}

	if len(images) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &GenerationFailure{
			Message: GenerationFailureMessage,
			Causes:  causes,
		}
	}

	if len(images) > s.resultLimit {
		images = images[:s.resultLimit]
	}

	return entities.NewTryOnResult(request.ID(), images), nil
}

func (s *TryOnDomainService) generateVariant(
	ctx context.Context,
	request *entities.TryOnRequest,
	variant valueobjects.VariantConfig,
) ([]*valueobjects.ImageData, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Variant: variant.Name, Err: err}
		}
	}

	start := time.Now()
	slog.Debug("variant generation started", "request_id", request.ID(), "variant", variant.Name)

	variantRequest := entities.NewVariantRequest(request, variant, BuildDirective(variant, request.Accessories()))
	result, err := s.generator.GenerateVariant(ctx, variantRequest)
	if err != nil {
		slog.Warn("variant generation failed",
			"request_id", request.ID(),
			"variant", variant.Name,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, &TransportError{Variant: variant.Name, Err: err}
	}

	var produced []*valueobjects.ImageData
	if result != nil {
		produced = result.Images()
	}

	slog.Info("variant generation finished",
		"request_id", request.ID(),
		"variant", variant.Name,
		"images", len(produced),
		"duration", time.Since(start),
	)
	return produced, nil
}
