package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GENERATION_BACKEND", "")
	// 空の環境変数は未設定として扱われる
	for _, key := range []string{"PORT", "SESSION_TTL", "GENERATION_TIMEOUT", "MAX_IMAGE_SIDE", "MAX_INPUT_PIXELS", "JPEG_QUALITY", "RESULT_LIMIT",
		"GENERATION_MODEL", "SUGGESTION_MODEL", "VTO_MODEL", "PREFERENCES_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != BackendGemini {
		t.Errorf("Expected backend %s, got %s", BackendGemini, cfg.Backend)
	}
	if cfg.MaxImageSide != 1024 || cfg.JPEGQuality != 80 || cfg.ResultLimit != 2 {
		t.Errorf("Unexpected normalizer/limit defaults: %+v", cfg)
	}
	if cfg.MaxInputPixels != 50_000_000 {
		t.Errorf("Expected a 50MP input budget, got %d", cfg.MaxInputPixels)
	}
	if cfg.GenerationModel != DefaultGenerationModel || cfg.SuggestionModel != DefaultSuggestionModel || cfg.VTOModel != DefaultVTOModel {
		t.Errorf("Unexpected model defaults: %s, %s, %s", cfg.GenerationModel, cfg.SuggestionModel, cfg.VTOModel)
	}
	if !strings.HasSuffix(cfg.PreferencesFile, filepath.Join("luastyle", "preferences.yaml")) {
		t.Errorf("Unexpected preferences path %s", cfg.PreferencesFile)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected 30m session TTL, got %v", cfg.SessionTTL)
	}
	if cfg.GenerationTimeout != 0 {
		t.Errorf("Expected no generation timeout by default, got %v", cfg.GenerationTimeout)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Addr())
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")
	t.Setenv("GENERATION_BACKEND", "VTO")
	t.Setenv("RATE_INTERVAL", "250ms")
	t.Setenv("PORT", "9090")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GeminiAPIKey != "legacy-key" {
		t.Errorf("Expected API_KEY fallback, got %q", cfg.GeminiAPIKey)
	}
	if cfg.ProjectID != "my-project" {
		t.Errorf("Expected GOOGLE_CLOUD_PROJECT fallback, got %q", cfg.ProjectID)
	}
	if cfg.Backend != BackendVTO {
		t.Errorf("Expected backend to be normalized to vto, got %s", cfg.Backend)
	}
	if cfg.RateInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.RateInterval)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected 9090, got %d", cfg.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"backend", "GENERATION_BACKEND", "dalle", "generation_backend"},
		{"quality", "JPEG_QUALITY", "101", "jpeg_quality"},
		{"side", "MAX_IMAGE_SIDE", "0", "max_image_side"},
		{"pixels", "MAX_INPUT_PIXELS", "-1", "max_input_pixels"},
		{"log level", "LOG_LEVEL", "chatty", "log_level"},
		{"port", "PORT", "70000", "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(NewViper())
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to mention %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_InvalidVTOParameters(t *testing.T) {
	t.Setenv("GENERATION_BACKEND", "vto")
	t.Setenv("VTO_SAMPLE_COUNT", "9")

	if _, err := Load(NewViper()); err == nil {
		t.Error("Expected error for sample count out of range")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "json", &buf)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "variant", "studio")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info to be filtered at warn level")
	}
	if !strings.Contains(out, `"variant":"studio"`) {
		t.Errorf("Expected JSON attributes, got %s", out)
	}

	if _, err := NewLogger("info", "xml", &buf); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := NewLogger("loud", "text", &buf); err == nil {
		t.Error("Expected error for unknown level")
	}
}
