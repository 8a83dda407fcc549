package usecases

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
)

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[entities.SessionID]*entities.Session
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: make(map[entities.SessionID]*entities.Session)}
}

func (r *memorySessionRepository) Save(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id entities.SessionID) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return session, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id entities.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type mockGenerationService struct {
	t *testing.T
	// respond is called once per variant.
	respond func(ctx context.Context, variant string) (int, error)

	mu    sync.Mutex
	calls int
}

func (m *mockGenerationService) GenerateVariant(ctx context.Context, request *entities.VariantRequest) (*entities.VariantResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	n, err := m.respond(ctx, request.Variant().Name)
	if err != nil {
		return nil, err
	}
	images := make([]*valueobjects.ImageData, 0, n)
	for i := 0; i < n; i++ {
		images = append(images, testImageData(m.t))
	}
	return entities.NewVariantResult(request.Variant().Name, images, ""), nil
}

func (m *mockGenerationService) Close() error {
	return nil
}

func (m *mockGenerationService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSuggester struct {
	suggestions []string
	err         error
}

func (m *mockSuggester) SuggestAccessories(ctx context.Context, image *valueobjects.ImageData) ([]string, error) {
	return m.suggestions, m.err
}

type memoryPreferenceRepository struct {
	values map[string]string
	err    error
}

func (r *memoryPreferenceRepository) Load(ctx context.Context, key string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.values[key], nil
}

func (r *memoryPreferenceRepository) Save(ctx context.Context, key, value string) error {
	if r.err != nil {
		return r.err
	}
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[key] = value
	return nil
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func testImageData(t *testing.T) *valueobjects.ImageData {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("Failed to encode jpeg: %v", err)
	}
	img, err := valueobjects.NewImageData(buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to create ImageData: %v", err)
	}
	return img
}
