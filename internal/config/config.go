package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"luastyle/internal/domain/services"
	"luastyle/internal/domain/valueobjects"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
	BackendVTO    = "vto"
)

var (
	validBackends   = []string{BackendGemini, BackendVertex, BackendVTO}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

type Config struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	Backend      string `mapstructure:"generation_backend"`

	GenerationModel string `mapstructure:"generation_model"`
	SuggestionModel string `mapstructure:"suggestion_model"`
	ProjectID       string `mapstructure:"project_id"`
	Location        string `mapstructure:"location"`

	VTOModel            string `mapstructure:"vto_model"`
	VTOBaseSteps        int    `mapstructure:"vto_base_steps"`
	VTOSampleCount      int    `mapstructure:"vto_sample_count"`
	VTOPersonGeneration string `mapstructure:"vto_person_generation"`
	VTOSafetySetting    string `mapstructure:"vto_safety_setting"`

	MaxImageSide      int           `mapstructure:"max_image_side"`
	MaxInputPixels    int           `mapstructure:"max_input_pixels"`
	JPEGQuality       int           `mapstructure:"jpeg_quality"`
	ResultLimit       int           `mapstructure:"result_limit"`
	RateInterval      time.Duration `mapstructure:"rate_interval"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`

	Port            int    `mapstructure:"port"`
	CookieSecret    string `mapstructure:"cookie_secret"`
	PreferencesFile string `mapstructure:"preferences_file"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// NewViper returns a viper instance with every key defaulted and bound to
// its environment variable. Callers may bind flags on top before Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("generation_backend", BackendGemini)
	v.SetDefault("generation_model", DefaultGenerationModel)
	v.SetDefault("suggestion_model", DefaultSuggestionModel)
	v.SetDefault("project_id", "")
	v.SetDefault("location", "us-central1")

	vto := valueobjects.DefaultVTOParameters()
	v.SetDefault("vto_model", DefaultVTOModel)
	v.SetDefault("vto_base_steps", vto.BaseSteps())
	v.SetDefault("vto_sample_count", vto.SampleCount())
	v.SetDefault("vto_person_generation", string(vto.PersonGeneration()))
	v.SetDefault("vto_safety_setting", string(vto.SafetySetting()))

	v.SetDefault("max_image_side", services.DefaultMaxSide)
	v.SetDefault("max_input_pixels", services.DefaultMaxPixels)
	v.SetDefault("jpeg_quality", services.DefaultJPEGQuality)
	v.SetDefault("result_limit", services.DefaultResultLimit)
	v.SetDefault("rate_interval", "0s")
	v.SetDefault("generation_timeout", "0s")
	v.SetDefault("session_ttl", "30m")

	v.SetDefault("port", 8080)
	v.SetDefault("cookie_secret", "")
	v.SetDefault("preferences_file", DefaultPreferencesPath())

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.AutomaticEnv()
	// 旧来の環境変数名も受け付ける
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("project_id", "PROJECT_ID", "GOOGLE_CLOUD_PROJECT")

	return v
}

// LoadEnvFiles reads .env.local and then .env into the process environment.
// Variables that are already set win, so .env.local overrides .env. Missing
// files are ignored.
func LoadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(validBackends, c.Backend) {
		return fmt.Errorf("generation_backend must be one of: %s", strings.Join(validBackends, ", "))
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("log_format must be one of: %s", strings.Join(validLogFormats, ", "))
	}
	if c.MaxImageSide < 1 {
		return fmt.Errorf("max_image_side must be positive, got %d", c.MaxImageSide)
	}
	if c.MaxInputPixels < 1 {
		return fmt.Errorf("max_input_pixels must be positive, got %d", c.MaxInputPixels)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.ResultLimit < 1 {
		return fmt.Errorf("result_limit must be positive, got %d", c.ResultLimit)
	}
	if c.RateInterval < 0 || c.GenerationTimeout < 0 || c.SessionTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Backend == BackendVTO {
		if _, err := c.VTOParameters(); err != nil {
			return fmt.Errorf("invalid VTO parameters: %w", err)
		}
	}
	return nil
}

// VTOParameters builds the predict parameters for the vto backend.
func (c *Config) VTOParameters() (*valueobjects.VTOParameters, error) {
	return valueobjects.NewVTOParameters(
		c.VTOBaseSteps,
		valueobjects.PersonGeneration(c.VTOPersonGeneration),
		valueobjects.SafetySetting(c.VTOSafetySetting),
		c.VTOSampleCount,
		valueobjects.PNG,
	)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
