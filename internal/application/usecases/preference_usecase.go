package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"luastyle/internal/domain/repositories"
	"luastyle/internal/domain/valueobjects"
)

type PreferenceUseCase struct {
	preferenceRepo repositories.PreferenceRepository
}

func NewPreferenceUseCase(preferenceRepo repositories.PreferenceRepository) *PreferenceUseCase {
	return &PreferenceUseCase{
		preferenceRepo: preferenceRepo,
	}
}

// Theme returns the stored theme. A missing or unreadable value yields the default.
func (uc *PreferenceUseCase) Theme(ctx context.Context) (valueobjects.Theme, error) {
	raw, err := uc.preferenceRepo.Load(ctx, valueobjects.ThemePreferenceKey)
	if err != nil {
		return valueobjects.DefaultTheme(), fmt.Errorf("failed to load theme: %w", err)
	}
	if raw == "" {
		return valueobjects.DefaultTheme(), nil
	}

	theme, err := valueobjects.ParseTheme(raw)
	if err != nil {
		slog.Warn("ignoring stored theme", "value", raw, "error", err)
		return valueobjects.DefaultTheme(), nil
	}
	return theme, nil
}

func (uc *PreferenceUseCase) SetTheme(ctx context.Context, value string) (valueobjects.Theme, error) {
	theme, err := valueobjects.ParseTheme(value)
	if err != nil {
		return "", err
	}
	if err := uc.preferenceRepo.Save(ctx, valueobjects.ThemePreferenceKey, theme.String()); err != nil {
		return "", fmt.Errorf("failed to save theme: %w", err)
	}
	return theme, nil
}

func (uc *PreferenceUseCase) ToggleTheme(ctx context.Context) (valueobjects.Theme, error) {
	current, err := uc.Theme(ctx)
	if err != nil {
		return "", err
	}
	return uc.SetTheme(ctx, current.Toggle().String())
}
