package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	domainrepos "luastyle/internal/domain/repositories"
)

// FilePreferenceRepository stores preferences as a flat YAML mapping.
type FilePreferenceRepository struct {
	path string
	mu   sync.Mutex
}

func NewFilePreferenceRepository(path string) domainrepos.PreferenceRepository {
	return &FilePreferenceRepository{path: path}
}

func (r *FilePreferenceRepository) Load(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (r *FilePreferenceRepository) Save(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

func (r *FilePreferenceRepository) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode preferences %s: %w", r.path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}
