package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	genai_std "google.golang.org/genai"

	"luastyle/internal/config"
)

type stubGenAIPool struct {
	client *genai_std.Client
	err    error
}

func (p *stubGenAIPool) GetGenAIClient(ctx context.Context) (*genai_std.Client, error) {
	return p.client, p.err
}

func (p *stubGenAIPool) Close() error {
	return nil
}

func newStubPool(t *testing.T, handler http.HandlerFunc) *stubGenAIPool {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := genai_std.NewClient(context.Background(), &genai_std.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai_std.BackendGeminiAPI,
		HTTPOptions: genai_std.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return &stubGenAIPool{client: client}
}

func TestGeminiAIService_GenerateVariant(t *testing.T) {
	var gotPath string
	var gotBody string
	pool := newStubPool(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Here is the look"},{"inlineData":{"mimeType":"image/png","data":%q}},{"inlineData":{"mimeType":"image/png","data":"bm90IGFuIGltYWdl"}}]}}]}`, testPNGBase64(t))
	})

	service := NewGeminiAIService(pool, "", "")
	result, err := service.GenerateVariant(context.Background(), testVariantRequest(t))
	if err != nil {
		t.Fatalf("GenerateVariant() error = %v", err)
	}

	if len(result.Images()) != 1 {
		t.Errorf("Expected 1 decodable image, got %d", len(result.Images()))
	}
	if result.Text() != "Here is the look" {
		t.Errorf("Text() = %q", result.Text())
	}
	if !strings.Contains(gotPath, config.DefaultGenerationModel) {
		t.Errorf("Request path %q does not name the model", gotPath)
	}
	if !strings.Contains(gotBody, "directive text") {
		t.Errorf("Directive not sent")
	}
}

func TestGeminiAIService_GenerateVariantWithoutCandidates(t *testing.T) {
	pool := newStubPool(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[]}`)
	})

	result, err := NewGeminiAIService(pool, "", "").GenerateVariant(context.Background(), testVariantRequest(t))
	if err != nil {
		t.Fatalf("GenerateVariant() error = %v", err)
	}
	if len(result.Images()) != 0 {
		t.Errorf("Expected no images, got %d", len(result.Images()))
	}
}

func TestGeminiAIService_MissingCredential(t *testing.T) {
	pool := &stubGenAIPool{err: errors.New("GEMINI_API_KEY is not set")}
	_, err := NewGeminiAIService(pool, "", "").GenerateVariant(context.Background(), testVariantRequest(t))
	if err == nil {
		t.Errorf("Expected the pool error to surface on the first call")
	}
}

func TestGeminiAIService_SuggestAccessories(t *testing.T) {
	var gotConfig map[string]any
	pool := newStubPool(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotConfig, _ = body["generationConfig"].(map[string]any)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[\"Gold hoop earrings\",\"Leather belt\"]"}]}}]}`)
	})

	got, err := NewGeminiAIService(pool, "", "").SuggestAccessories(context.Background(), testPNGData(t))
	if err != nil {
		t.Fatalf("SuggestAccessories() error = %v", err)
	}
	if len(got) != 2 || got[0] != "Gold hoop earrings" {
		t.Errorf("SuggestAccessories() = %v", got)
	}
	if gotConfig["responseMimeType"] != "application/json" {
		t.Errorf("Expected a JSON response config, got %v", gotConfig)
	}
}
