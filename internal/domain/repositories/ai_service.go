package repositories

import (
	"context"

	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
)

// 画像生成サービス
// 1バリアント分のリクエストを外部の生成APIへ送る
type GenerationService interface {
	GenerateVariant(ctx context.Context, request *entities.VariantRequest) (*entities.VariantResult, error)

	Close() error
}

// アクセサリー提案サービス
type AccessorySuggester interface {
	SuggestAccessories(ctx context.Context, image *valueobjects.ImageData) ([]string, error)
}
