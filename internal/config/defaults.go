package config

import (
	"os"
	"path/filepath"
)

// Model names used when the corresponding key is unset.
const (
	DefaultGenerationModel = "gemini-2.5-flash-image"
	DefaultSuggestionModel = "gemini-2.5-flash"
	DefaultVTOModel        = "virtual-try-on-preview-08-04"
)

// DefaultPreferencesPath is $XDG_CONFIG_HOME/luastyle/preferences.yaml or its platform equivalent.
func DefaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "luastyle", "preferences.yaml")
}
