package repositories

import (
	"context"
)

// PreferenceRepository persists single string preferences by key.
// Load returns an empty string when the key was never written.
type PreferenceRepository interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}
