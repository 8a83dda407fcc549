package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
)

type variantOutcome struct {
	images int
	err    error
	// gate, when set, blocks the call until it is closed or ctx ends.
	gate chan struct{}
}

type mockGenerationService struct {
	t        *testing.T
	outcomes map[string]variantOutcome

	mu         sync.Mutex
	calls      int
	directives map[string]string
}

func newMockGenerationService(t *testing.T, outcomes map[string]variantOutcome) *mockGenerationService {
	return &mockGenerationService{
		t:          t,
		outcomes:   outcomes,
		directives: make(map[string]string),
	}
}

func (m *mockGenerationService) GenerateVariant(ctx context.Context, request *entities.VariantRequest) (*entities.VariantResult, error) {
	name := request.Variant().Name

	m.mu.Lock()
	m.calls++
	m.directives[name] = request.Directive()
	m.mu.Unlock()

	outcome := m.outcomes[name]
	if outcome.gate != nil {
		select {
		case <-outcome.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if outcome.err != nil {
		return nil, outcome.err
	}

	images := make([]*valueobjects.ImageData, 0, outcome.images)
	for i := 0; i < outcome.images; i++ {
		images = append(images, createTestImageData(m.t))
	}
	return entities.NewVariantResult(name, images, ""), nil
}

func (m *mockGenerationService) Close() error {
	return nil
}

func (m *mockGenerationService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestRequest(t *testing.T, labels ...string) *entities.TryOnRequest {
	t.Helper()
	accessories, err := valueobjects.NewAccessorySelection(labels...)
	if err != nil {
		t.Fatalf("NewAccessorySelection() error = %v", err)
	}
	request, err := entities.NewTryOnRequest(createTestImageData(t), createTestImageData(t), accessories)
	if err != nil {
		t.Fatalf("Failed to create valid request: %v", err)
	}
	return request
}

func TestTryOnDomainService_TryOn(t *testing.T) {
	tests := []struct {
		name       string
		outcomes   map[string]variantOutcome
		wantImages int
		wantErr    bool
		wantQuota  bool
	}{
		{
			name: "both variants succeed",
			outcomes: map[string]variantOutcome{
				"studio":  {images: 1},
				"outdoor": {images: 1},
			},
			wantImages: 2,
		},
		{
			name: "one variant fails",
			outcomes: map[string]variantOutcome{
				"studio":  {err: errors.New("connection reset")},
				"outdoor": {images: 1},
			},
			wantImages: 1,
		},
		{
			name: "results are truncated to the limit",
			outcomes: map[string]variantOutcome{
				"studio":  {images: 3},
				"outdoor": {images: 2},
			},
			wantImages: 2,
		},
		{
			name: "all variants fail",
			outcomes: map[string]variantOutcome{
				"studio":  {err: errors.New("AI service failed")},
				"outdoor": {err: errors.New("malformed response")},
			},
			wantErr: true,
		},
		{
			name: "all variants return no image parts",
			outcomes: map[string]variantOutcome{
				"studio":  {images: 0},
				"outdoor": {images: 0},
			},
			wantErr: true,
		},
		{
			name: "quota error handling",
			outcomes: map[string]variantOutcome{
				"studio":  {err: errors.New("rpc error: code = ResourceExhausted desc = Quota exceeded")},
				"outdoor": {err: errors.New("Error 429, Message: RESOURCE_EXHAUSTED")},
			},
			wantErr:   true,
			wantQuota: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockGenerationService(t, tt.outcomes)
			service := NewTryOnDomainService(mock)

			result, err := service.TryOn(context.Background(), newTestRequest(t))

			if mock.callCount() != len(valueobjects.DefaultVariants) {
				t.Errorf("Expected %d generation calls, got %d", len(valueobjects.DefaultVariants), mock.callCount())
			}

			if tt.wantErr {
				failure, ok := IsGenerationFailure(err)
				if !ok {
					t.Fatalf("Expected GenerationFailure, got %v", err)
				}
				if failure.Message == "" {
					t.Errorf("Expected a user-facing message")
				}
				if failure.QuotaExhausted() != tt.wantQuota {
					t.Errorf("QuotaExhausted() = %v, want %v", failure.QuotaExhausted(), tt.wantQuota)
				}
				if result != nil {
					t.Errorf("Expected nil result on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("TryOn() error = %v", err)
			}
			if result.Len() != tt.wantImages {
				t.Errorf("Expected %d images, got %d", tt.wantImages, result.Len())
			}
		})
	}
}

func TestTryOnDomainService_FailureCarriesTransportErrors(t *testing.T) {
	cause := errors.New("network unreachable")
	mock := newMockGenerationService(t, map[string]variantOutcome{
		"studio":  {err: cause},
		"outdoor": {err: cause},
	})

	_, err := NewTryOnDomainService(mock).TryOn(context.Background(), newTestRequest(t))

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected a TransportError cause, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected the original cause to be reachable")
	}
	failure, _ := IsGenerationFailure(err)
	if len(failure.Causes) != 2 {
		t.Errorf("Expected 2 causes, got %d", len(failure.Causes))
	}
}

func TestTryOnDomainService_FailureDoesNotShortCircuit(t *testing.T) {
	gate := make(chan struct{})
	mock := newMockGenerationService(t, map[string]variantOutcome{
		"studio":  {err: errors.New("fails immediately")},
		"outdoor": {images: 1, gate: gate},
	})

	done := make(chan struct{})
	var (
		result *entities.TryOnResult
		err    error
	)
	go func() {
		defer close(done)
		result, err = NewTryOnDomainService(mock).TryOn(context.Background(), newTestRequest(t))
	}()

	select {
	case <-done:
		t.Fatal("TryOn returned before the slow variant settled")
	case <-time.After(50 * time.Millisecond):
	}
	close(gate)
	<-done

	if err != nil {
		t.Fatalf("TryOn() error = %v", err)
	}
	if result.Len() != 1 {
		t.Errorf("Expected 1 image from the slow variant, got %d", result.Len())
	}
}

func TestTryOnDomainService_Cancellation(t *testing.T) {
	mock := newMockGenerationService(t, map[string]variantOutcome{
		"studio":  {images: 1, gate: make(chan struct{})},
		"outdoor": {images: 1, gate: make(chan struct{})},
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := NewTryOnDomainService(mock).TryOn(ctx, newTestRequest(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if _, ok := IsGenerationFailure(err); ok {
		t.Errorf("Cancellation must not be reported as a GenerationFailure")
	}
}

func TestTryOnDomainService_DeadlineKeepsCollectedImages(t *testing.T) {
	tests := []struct {
		name       string
		outcomes   map[string]variantOutcome
		wantImages int
		wantErr    error
	}{
		{
			name: "one variant finished before the deadline",
			outcomes: map[string]variantOutcome{
				"studio":  {images: 1},
				"outdoor": {images: 1, gate: make(chan struct{})},
			},
			wantImages: 1,
		},
		{
			name: "nothing finished before the deadline",
			outcomes: map[string]variantOutcome{
				"studio":  {images: 1, gate: make(chan struct{})},
				"outdoor": {images: 1, gate: make(chan struct{})},
			},
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			result, err := NewTryOnDomainService(newMockGenerationService(t, tt.outcomes)).TryOn(ctx, newTestRequest(t))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TryOn() error = %v", err)
			}
			if result.Len() != tt.wantImages {
				t.Errorf("Expected %d images, got %d", tt.wantImages, result.Len())
			}
		})
	}
}

func TestTryOnDomainService_CancellationDiscardsCollectedImages(t *testing.T) {
	mock := newMockGenerationService(t, map[string]variantOutcome{
		"studio":  {images: 1},
		"outdoor": {images: 1, gate: make(chan struct{})},
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	result, err := NewTryOnDomainService(mock).TryOn(ctx, newTestRequest(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected no result after cancellation, got %d images", result.Len())
	}
}

func TestTryOnDomainService_DirectivePerVariant(t *testing.T) {
	mock := newMockGenerationService(t, map[string]variantOutcome{
		"studio":  {images: 1},
		"outdoor": {images: 1},
	})

	if _, err := NewTryOnDomainService(mock).TryOn(context.Background(), newTestRequest(t, "Rings", "Watches")); err != nil {
		t.Fatalf("TryOn() error = %v", err)
	}

	for _, variant := range valueobjects.DefaultVariants {
		directive := mock.directives[variant.Name]
		if !strings.Contains(directive, variant.Style) || !strings.Contains(directive, variant.Setting) {
			t.Errorf("Directive for %s misses its framing: %q", variant.Name, directive)
		}
		if !strings.Contains(directive, "Rings, Watches") {
			t.Errorf("Directive for %s misses the accessories", variant.Name)
		}
	}
}

func TestTryOnDomainService_RateLimiter(t *testing.T) {
	mock := newMockGenerationService(t, map[string]variantOutcome{
		"studio":  {images: 1},
		"outdoor": {images: 1},
	})
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	service := NewTryOnDomainService(mock, WithRateLimiter(limiter))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The second variant cannot get a token before the deadline and is dropped.
	result, err := service.TryOn(ctx, newTestRequest(t))
	if err != nil {
		t.Fatalf("TryOn() error = %v", err)
	}
	if result.Len() != 1 {
		t.Errorf("Expected 1 image, got %d", result.Len())
	}
	if mock.callCount() != 1 {
		t.Errorf("Expected 1 generation call, got %d", mock.callCount())
	}
}

func TestTryOnDomainService_NilRequest(t *testing.T) {
	mock := newMockGenerationService(t, nil)
	_, err := NewTryOnDomainService(mock).TryOn(context.Background(), nil)
	if !errors.Is(err, entities.ErrInputsMissing) {
		t.Errorf("Expected ErrInputsMissing, got %v", err)
	}
	if mock.callCount() != 0 {
		t.Errorf("Generation service must not be called")
	}
}

func createTestImageData(t *testing.T) *valueobjects.ImageData {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	imageData, err := valueobjects.NewImageData(buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to create test image data: %v", err)
	}
	return imageData
}
