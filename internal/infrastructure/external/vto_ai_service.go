package external

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	luaconfig "luastyle/internal/config"
	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
	"luastyle/model"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	// DefaultMaxResponseBytes fits four base64 encoded PNG samples with room to spare.
	DefaultMaxResponseBytes int64 = 64 << 20
)

type VTOConfig struct {
	ProjectID  string
	Location   string
	Model      string
	Parameters *valueobjects.VTOParameters
	// BaseURL overrides the regional aiplatform endpoint.
	BaseURL string
	// TokenSource overrides Application Default Credentials.
	TokenSource oauth2.TokenSource
	HTTPClient  *http.Client
	// MaxResponseBytes caps how much of a predict response is read.
	MaxResponseBytes int64
}

// VTOAIService calls the Vertex AI Virtual Try-On predict endpoint. The model
// takes no prompt, so the variant directive is not transmitted and every
// variant is an independent sample.
type VTOAIService struct {
	config VTOConfig

	mu          sync.Mutex
	tokenSource oauth2.TokenSource
}

func NewVTOAIService(config VTOConfig) *VTOAIService {
	if config.Model == "" {
		config.Model = luaconfig.DefaultVTOModel
	}
	if config.Parameters == nil {
		config.Parameters = valueobjects.DefaultVTOParameters()
	}
	if config.BaseURL == "" {
		config.BaseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com", config.Location)
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 300 * time.Second}
	}
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return &VTOAIService{
		config:      config,
		tokenSource: config.TokenSource,
	}
}

func (s *VTOAIService) GenerateVariant(ctx context.Context, request *entities.VariantRequest) (*entities.VariantResult, error) {
	if s.config.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID is not configured")
	}

	accessToken, err := s.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	params := s.config.Parameters
	apiRequest := model.VirtualTryOnRequest{
		Instances: []model.Instance{{
			PersonImage: model.ImageInput{
				Image: model.EncodedImage{BytesBase64Encoded: request.SubjectImage().ToBase64()},
			},
			ProductImages: []model.ImageInput{{
				Image: model.EncodedImage{BytesBase64Encoded: request.GarmentImage().ToBase64()},
			}},
		}},
		Parameters: model.Parameters{
			BaseSteps:        params.BaseSteps(),
			PersonGeneration: string(params.PersonGeneration()),
			SafetySetting:    string(params.SafetySetting()),
			SampleCount:      params.SampleCount(),
			OutputOptions: model.OutputOptions{
				MimeType: params.OutputFormat().MimeType(),
			},
		},
	}

	reqBody, err := json.Marshal(apiRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// 画像データは出力しない
	slog.Debug("VTO predict request",
		"variant", request.Variant().Name,
		"model", s.config.Model,
		"parameters", apiRequest.Parameters,
	)

	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		strings.TrimRight(s.config.BaseURL, "/"), s.config.ProjectID, s.config.Location, s.config.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	limit := s.config.MaxResponseBytes
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(respBody)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var predResp model.VirtualTryOnResponse
	if err := json.Unmarshal(respBody, &predResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var images []*valueobjects.ImageData
	for i, prediction := range predResp.Predictions {
		if prediction.BytesBase64Encoded == "" {
			if prediction.RaiFilteredReason != "" {
				slog.Warn("prediction filtered", "variant", request.Variant().Name, "index", i, "reason", prediction.RaiFilteredReason)
			}
			continue
		}

		imageBytes, err := base64.StdEncoding.DecodeString(prediction.BytesBase64Encoded)
		if err != nil {
			continue
		}

		imageData, err := valueobjects.NewImageData(imageBytes)
		if err != nil {
			continue
		}
		images = append(images, imageData)
	}

	return entities.NewVariantResult(request.Variant().Name, images, ""), nil
}

func (s *VTOAIService) getAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.tokenSource == nil {
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			s.mu.Unlock()
			return "", fmt.Errorf("failed to find default credentials: %w", err)
		}
		s.tokenSource = oauth2.ReuseTokenSource(nil, creds.TokenSource)
	}
	ts := s.tokenSource
	s.mu.Unlock()

	token, err := ts.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (s *VTOAIService) Close() error {
	return nil
}
