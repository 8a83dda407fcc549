package repositories

import (
	"context"

	"cloud.google.com/go/vertexai/genai" // VertexAI用
	genai_std "google.golang.org/genai"  // 標準GenAI用
)

// AIClientConfig は各バックエンドが共有する接続設定
type AIClientConfig struct {
	APIKey    string
	ProjectID string
	Location  string
}

// VertexAIClientPool は vertex バックエンド用のクライアントを遅延生成して保持する
type VertexAIClientPool interface {
	// PROJECT_ID が未設定の場合は初回呼び出し時にエラーを返す
	GetVertexAIClient(ctx context.Context) (*genai.Client, error)
	Close() error
}

// GenAIClientPool は gemini バックエンドとアクセサリー提案で使うクライアントを保持する
type GenAIClientPool interface {
	// APIキーが未設定の場合は初回呼び出し時にエラーを返す
	GetGenAIClient(ctx context.Context) (*genai_std.Client, error)
	Close() error
}

// ClientPoolService は全クライアントプールをまとめて管理する
type ClientPoolService interface {
	VertexAIPool() VertexAIClientPool
	GenAIPool() GenAIClientPool
	Config() *AIClientConfig

	// 全リソースのクリーンアップ
	Close() error
}
