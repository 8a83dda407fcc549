package cmd

import (
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	appservices "luastyle/internal/application/services"
	"luastyle/internal/application/usecases"
	"luastyle/internal/config"
	"luastyle/internal/domain/repositories"
	domainservices "luastyle/internal/domain/services"
	"luastyle/internal/infrastructure/external"
	infraservices "luastyle/internal/infrastructure/services"
)

// app holds the use cases shared by the serve and tryon commands.
type app struct {
	tryOn   *usecases.TryOnUseCase
	results *usecases.ResultUseCase

	generator repositories.GenerationService
	pools     repositories.ClientPoolService
}

func newApp(cfg *config.Config, sessionRepo repositories.SessionRepository) (*app, error) {
	// インフラ層を初期化
	pools := infraservices.NewClientPoolService(repositories.AIClientConfig{
		APIKey:    cfg.GeminiAPIKey,
		ProjectID: cfg.ProjectID,
		Location:  cfg.Location,
	})

	// アクセサリー提案は常にGemini APIのテキストモデルを使う
	suggester := external.NewGeminiAIService(pools.GenAIPool(), cfg.GenerationModel, cfg.SuggestionModel)

	generator, err := newGenerator(cfg, pools, suggester)
	if err != nil {
		pools.Close()
		return nil, err
	}

	// ドメイン層を初期化
	opts := []domainservices.Option{domainservices.WithResultLimit(cfg.ResultLimit)}
	if cfg.RateInterval > 0 {
		opts = append(opts, domainservices.WithRateLimiter(rate.NewLimiter(rate.Every(cfg.RateInterval), 1)))
	}
	domainService := domainservices.NewTryOnDomainService(generator, opts...)
	normalizer := domainservices.NewImageNormalizer(cfg.MaxImageSide, cfg.JPEGQuality, cfg.MaxInputPixels)

	// アプリケーション層を初期化
	heartbeat := appservices.NewHeartbeat(appservices.DefaultHeartbeatConfig())

	slog.Info("generation backend ready",
		"backend", cfg.Backend,
		"model", generationModel(cfg),
		"result_limit", cfg.ResultLimit,
		"rate_interval", cfg.RateInterval,
		"timeout", cfg.GenerationTimeout,
	)

	return &app{
		tryOn:     usecases.NewTryOnUseCase(sessionRepo, normalizer, domainService, heartbeat, cfg.GenerationTimeout),
		results:   usecases.NewResultUseCase(sessionRepo, suggester),
		generator: generator,
		pools:     pools,
	}, nil
}

func newGenerator(cfg *config.Config, pools repositories.ClientPoolService, gemini *external.GeminiAIService) (repositories.GenerationService, error) {
	switch cfg.Backend {
	case config.BackendVertex:
		return external.NewVertexAIService(pools.VertexAIPool(), cfg.GenerationModel), nil
	case config.BackendVTO:
		params, err := cfg.VTOParameters()
		if err != nil {
			return nil, err
		}
		return external.NewVTOAIService(external.VTOConfig{
			ProjectID:  cfg.ProjectID,
			Location:   cfg.Location,
			Model:      cfg.VTOModel,
			Parameters: params,
		}), nil
	default:
		return gemini, nil
	}
}

func generationModel(cfg *config.Config) string {
	if cfg.Backend == config.BackendVTO {
		return cfg.VTOModel
	}
	return cfg.GenerationModel
}

func (a *app) Close() error {
	return errors.Join(a.generator.Close(), a.pools.Close())
}
