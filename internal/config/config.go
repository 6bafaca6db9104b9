// ABOUTME: Centralized configuration for the prompt randomizer CLI and MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harper/prompt-randomizer/internal/logging"
)

// DefaultNegativePrompt keeps text, frames and common artifacts out of generated images
const DefaultNegativePrompt = "(title), (text), ((((underage)))), ((((child)))), (((kid))), (((preteen))), " +
	"((((frame)))), ((((border)))), (((((background))))), ((tiling)), poorly drawn hands, poorly drawn feet, " +
	"poorly drawn face, out of frame, extra limbs, deformed, body out of frame, bad anatomy, watermark, " +
	"signature, cut off, low contrast, underexposed, overexposed, bad art, beginner, amateur, distorted face, " +
	"blurry, draft, grainy"

// Config holds all configuration for the randomizer
type Config struct {
	// Library settings
	LibraryDir   string
	TemplatePath string
	Seed         uint64
	LogLevel     string

	// Stable Diffusion settings
	SDEndpoint       string
	SDWidth          int
	SDHeight         int
	SDSteps          int
	SDGuidance       float64
	SDTimeout        time.Duration
	SDNegativePrompt string

	// OpenAI settings
	OpenAIKey  string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// Guy settings
	DefaultGuy string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		LibraryDir:       getEnv("RANDOMIZER_LIBRARY", "data"),
		TemplatePath:     os.Getenv("RANDOMIZER_TEMPLATE"),
		Seed:             getEnvUint64("RANDOMIZER_SEED", 0),
		LogLevel:         getEnv("RANDOMIZER_LOG_LEVEL", "info"),
		SDEndpoint:       getEnv("SD_ENDPOINT", "https://stablediffusionapi.com/api/v3/text2img"),
		SDWidth:          getEnvInt("SD_WIDTH", 720),
		SDHeight:         getEnvInt("SD_HEIGHT", 480),
		SDSteps:          getEnvInt("SD_STEPS", 100),
		SDGuidance:       getEnvFloat("SD_GUIDANCE", 10.0),
		SDTimeout:        getEnvDuration("SD_TIMEOUT", 60*time.Second),
		SDNegativePrompt: getEnv("SD_NEGATIVE_PROMPT", DefaultNegativePrompt),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		ChatModel:        getEnv("GUY_OPENAI_MODEL", "gpt-4"),
		Timeout:          getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		CharmHost:        getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:      getEnv("CHARM_DB", "randomizer"),
		AutoSync:         getEnvBool("CHARM_AUTO_SYNC", true),
		DefaultGuy:       getEnv("DEFAULT_GUY", "guy"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.SDWidth <= 0 || c.SDHeight <= 0 {
		return fmt.Errorf("SD_WIDTH and SD_HEIGHT must be positive, got %dx%d", c.SDWidth, c.SDHeight)
	}
	if c.SDSteps <= 0 {
		return fmt.Errorf("SD_STEPS must be positive, got %d", c.SDSteps)
	}
	if c.SDGuidance < 0 {
		return fmt.Errorf("SD_GUIDANCE must not be negative, got %f", c.SDGuidance)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("RANDOMIZER_LOG_LEVEL: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvUint64(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
