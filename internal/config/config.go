package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	Browser   BrowserConfig
	Image     ImageConfig
	Providers ProvidersConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	Timeout    time.Duration
	FetchLimit time.Duration
	NavTimeout time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	Locale         string
}

type ImageConfig struct {
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int
	Quality   int
	Timeout   time.Duration
}

type ProvidersConfig struct {
	GenerateTimeout   time.Duration
	ValidateTimeout   time.Duration
	OpenAIBaseURL     string
	OpenRouterBaseURL string
	AnthropicBaseURL  string
	GeminiBaseURL     string
	OpenAIModel       string
	OpenRouterModel   string
	AnthropicModel    string
	GeminiModel       string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			Timeout:    getDurationOrDefault("SCRAPER_TIMEOUT", 45*time.Second),
			FetchLimit: getDurationOrDefault("SCRAPER_FETCH_TIMEOUT", 20*time.Second),
			NavTimeout: getDurationOrDefault("SCRAPER_NAV_TIMEOUT", 30*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", ""),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
		},
		Image: ImageConfig{
			MaxBytes:  getInt64OrDefault("IMAGE_MAX_BYTES", 15*1024*1024),
			MaxWidth:  getIntOrDefault("IMAGE_MAX_WIDTH", 1024),
			MaxHeight: getIntOrDefault("IMAGE_MAX_HEIGHT", 1024),
			Quality:   getIntOrDefault("IMAGE_JPEG_QUALITY", 85),
			Timeout:   getDurationOrDefault("IMAGE_FETCH_TIMEOUT", 20*time.Second),
		},
		Providers: ProvidersConfig{
			GenerateTimeout:   getDurationOrDefault("PROVIDER_GENERATE_TIMEOUT", 60*time.Second),
			ValidateTimeout:   getDurationOrDefault("PROVIDER_VALIDATE_TIMEOUT", 15*time.Second),
			OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", ""),
			OpenRouterBaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", ""),
			AnthropicBaseURL:  getEnvOrDefault("ANTHROPIC_BASE_URL", ""),
			GeminiBaseURL:     getEnvOrDefault("GEMINI_BASE_URL", ""),
			OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", ""),
			OpenRouterModel:   getEnvOrDefault("OPENROUTER_MODEL", ""),
			AnthropicModel:    getEnvOrDefault("ANTHROPIC_MODEL", ""),
			GeminiModel:       getEnvOrDefault("GEMINI_MODEL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.Timeout < time.Second {
		return fmt.Errorf("SCRAPER_TIMEOUT must be at least 1s")
	}

	if c.Image.MaxBytes < 1024 {
		return fmt.Errorf("IMAGE_MAX_BYTES must be at least 1024")
	}

	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("IMAGE_JPEG_QUALITY must be between 1 and 100")
	}

	if c.Image.MaxWidth < 1 || c.Image.MaxHeight < 1 {
		return fmt.Errorf("image bounding box must be positive")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
