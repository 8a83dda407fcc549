package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/vertexai/genai" // VertexAI用
	"google.golang.org/api/option"
	genai_std "google.golang.org/genai" // 標準GenAI用

	"luastyle/internal/domain/repositories"
)

var (
	ErrMissingAPIKey    = errors.New("GEMINI_API_KEY is not set")
	ErrMissingProjectID = errors.New("PROJECT_ID is not set")
)

// lazyClient は初回取得時にクライアントを生成し、以降は同じインスタンスを返す
// 生成に失敗した場合は保持せず、次回の呼び出しで再試行する
type lazyClient[T any] struct {
	mu     sync.RWMutex
	client *T
	create func(ctx context.Context) (*T, error)
}

func (l *lazyClient[T]) get(ctx context.Context) (*T, error) {
	l.mu.RLock()
	client := l.client
	l.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// ダブルチェックロッキング
	if l.client != nil {
		return l.client, nil
	}

	client, err := l.create(ctx)
	if err != nil {
		return nil, err
	}
	l.client = client
	return client, nil
}

// release は保持しているクライアントを外して返す
func (l *lazyClient[T]) release() *T {
	l.mu.Lock()
	defer l.mu.Unlock()

	client := l.client
	l.client = nil
	return client
}

type vertexAIClientPool struct {
	lazy lazyClient[genai.Client]
}

func newVertexAIClientPool(config *repositories.AIClientConfig) repositories.VertexAIClientPool {
	pool := &vertexAIClientPool{}
	pool.lazy.create = func(ctx context.Context) (*genai.Client, error) {
		// 認証情報の不足は起動時ではなく初回呼び出しで返す
		if config.ProjectID == "" {
			return nil, ErrMissingProjectID
		}

		endpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", config.Location)
		client, err := genai.NewClient(ctx, config.ProjectID, config.Location, option.WithEndpoint(endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create VertexAI client: %w", err)
		}
		return client, nil
	}
	return pool
}

func (p *vertexAIClientPool) GetVertexAIClient(ctx context.Context) (*genai.Client, error) {
	return p.lazy.get(ctx)
}

func (p *vertexAIClientPool) Close() error {
	if client := p.lazy.release(); client != nil {
		return client.Close()
	}
	return nil
}

type genAIClientPool struct {
	lazy lazyClient[genai_std.Client]
}

func newGenAIClientPool(config *repositories.AIClientConfig) repositories.GenAIClientPool {
	pool := &genAIClientPool{}
	pool.lazy.create = func(ctx context.Context) (*genai_std.Client, error) {
		if config.APIKey == "" {
			return nil, ErrMissingAPIKey
		}

		client, err := genai_std.NewClient(ctx, &genai_std.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai_std.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create GenAI client: %w", err)
		}
		return client, nil
	}
	return pool
}

func (p *genAIClientPool) GetGenAIClient(ctx context.Context) (*genai_std.Client, error) {
	return p.lazy.get(ctx)
}

// GenAI Clientはリソースクリーンアップ不要
func (p *genAIClientPool) Close() error {
	p.lazy.release()
	return nil
}

type clientPoolService struct {
	config       *repositories.AIClientConfig
	vertexAIPool repositories.VertexAIClientPool
	genAIPool    repositories.GenAIClientPool
}

// NewClientPoolService はバックエンドごとのクライアントプールをまとめる
// クライアントは初回利用時に生成される
func NewClientPoolService(config repositories.AIClientConfig) repositories.ClientPoolService {
	cfg := &config
	return &clientPoolService{
		config:       cfg,
		vertexAIPool: newVertexAIClientPool(cfg),
		genAIPool:    newGenAIClientPool(cfg),
	}
}

func (s *clientPoolService) VertexAIPool() repositories.VertexAIClientPool {
	return s.vertexAIPool
}

func (s *clientPoolService) GenAIPool() repositories.GenAIClientPool {
	return s.genAIPool
}

func (s *clientPoolService) Config() *repositories.AIClientConfig {
	return s.config
}

func (s *clientPoolService) Close() error {
	var errs []error
	if err := s.vertexAIPool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("VertexAI pool close error: %w", err))
	}
	if err := s.genAIPool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("GenAI pool close error: %w", err))
	}
	return errors.Join(errs...)
}
