package external

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"

	"luastyle/internal/config"
	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/repositories"
	"luastyle/internal/domain/valueobjects"
)

// VertexAIService generates variants through the Vertex AI Gemini SDK.
type VertexAIService struct {
	pool  repositories.VertexAIClientPool
	model string
}

func NewVertexAIService(pool repositories.VertexAIClientPool, model string) *VertexAIService {
	if model == "" {
		model = config.DefaultGenerationModel
	}
	return &VertexAIService{
		pool:  pool,
		model: model,
	}
}

func (s *VertexAIService) GenerateVariant(ctx context.Context, request *entities.VariantRequest) (*entities.VariantResult, error) {
	client, err := s.pool.GetVertexAIClient(ctx)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(s.model)
	prompt := []genai.Part{
		genai.Blob{MIMEType: request.SubjectImage().MimeType(), Data: request.SubjectImage().Data()},
		genai.Blob{MIMEType: request.GarmentImage().MimeType(), Data: request.GarmentImage().Data()},
		genai.Text(request.Directive()),
	}

	resp, err := model.GenerateContent(ctx, prompt...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return entities.NewVariantResult(request.Variant().Name, nil, ""), nil
	}

	var (
		images []*valueobjects.ImageData
		text   string
	)
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Blob:
			imageData, err := valueobjects.NewImageData(p.Data)
			if err != nil {
				slog.Warn("skipping undecodable image part", "variant", request.Variant().Name, "mimeType", p.MIMEType, "error", err)
				continue
			}
			images = append(images, imageData)
		case genai.Text:
			text += string(p)
		}
	}

	return entities.NewVariantResult(request.Variant().Name, images, text), nil
}

func (s *VertexAIService) Close() error {
	return s.pool.Close()
}
