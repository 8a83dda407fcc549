package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	genai_std "google.golang.org/genai"

	"luastyle/internal/config"
	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/repositories"
	"luastyle/internal/domain/valueobjects"
)

const (
	suggestionPrompt = "Analyze the final look and suggest 10 fashion accessories in English that match its current style perfectly."
)

// GeminiAIService talks to the Gemini API. It generates try-on variants with
// the image model and accessory suggestions with the text model.
type GeminiAIService struct {
	pool            repositories.GenAIClientPool
	generationModel string
	suggestionModel string
}

func NewGeminiAIService(pool repositories.GenAIClientPool, generationModel, suggestionModel string) *GeminiAIService {
	if generationModel == "" {
		generationModel = config.DefaultGenerationModel
	}
	if suggestionModel == "" {
		suggestionModel = config.DefaultSuggestionModel
	}
	return &GeminiAIService{
		pool:            pool,
		generationModel: generationModel,
		suggestionModel: suggestionModel,
	}
}

func (s *GeminiAIService) GenerateVariant(ctx context.Context, request *entities.VariantRequest) (*entities.VariantResult, error) {
	client, err := s.pool.GetGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	// 画像1: 本人、画像2: 衣服、最後に指示文
	parts := []*genai_std.Part{
		inlineImagePart(request.SubjectImage()),
		inlineImagePart(request.GarmentImage()),
		genai_std.NewPartFromText(request.Directive()),
	}
	contents := []*genai_std.Content{
		genai_std.NewContentFromParts(parts, genai_std.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, s.generationModel, contents, &genai_std.GenerateContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	return collectVariantResult(request.Variant().Name, resp), nil
}

func (s *GeminiAIService) SuggestAccessories(ctx context.Context, image *valueobjects.ImageData) ([]string, error) {
	client, err := s.pool.GetGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai_std.Part{
		inlineImagePart(image),
		genai_std.NewPartFromText(suggestionPrompt),
	}
	contents := []*genai_std.Content{
		genai_std.NewContentFromParts(parts, genai_std.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, s.suggestionModel, contents, &genai_std.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai_std.Schema{
			Type:  genai_std.TypeArray,
			Items: &genai_std.Schema{Type: genai_std.TypeString},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return []string{}, nil
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	return suggestions, nil
}

func (s *GeminiAIService) Close() error {
	return s.pool.Close()
}

func inlineImagePart(image *valueobjects.ImageData) *genai_std.Part {
	return &genai_std.Part{
		InlineData: &genai_std.Blob{
			MIMEType: image.MimeType(),
			Data:     image.Data(),
		},
	}
}

// collectVariantResult keeps the inline images of the first candidate. Parts
// that do not decode as images are skipped.
func collectVariantResult(variant string, resp *genai_std.GenerateContentResponse) *entities.VariantResult {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return entities.NewVariantResult(variant, nil, "")
	}

	var (
		images []*valueobjects.ImageData
		text   strings.Builder
	)
	for i, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.InlineData != nil:
			imageData, err := valueobjects.NewImageData(part.InlineData.Data)
			if err != nil {
				slog.Warn("skipping undecodable image part", "variant", variant, "index", i, "mimeType", part.InlineData.MIMEType, "error", err)
				continue
			}
			images = append(images, imageData)
		case part.Text != "":
			text.WriteString(part.Text)
		}
	}

	if len(images) == 0 {
		slog.Warn("No image data in response", "variant", variant, "responseText", text.String())
	}
	return entities.NewVariantResult(variant, images, text.String())
}
