package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Text generation model (OpenAI-compatible endpoint or Ollama).
	TextClientType string        `envconfig:"TEXT_CLIENT" default:"openai"`
	TextBaseURL    string        `envconfig:"TEXT_BASE_URL" default:"https://api.openai.com/v1"`
	TextModel      string        `envconfig:"TEXT_MODEL" default:"gpt-4o-mini"`
	TextAPIKey     string        `envconfig:"TEXT_API_KEY"`
	TextTimeout    time.Duration `envconfig:"TEXT_TIMEOUT" default:"120s"`

	// Illustration model (Gemini image generation).
	ImageModel       string        `envconfig:"IMAGE_MODEL" default:"gemini-2.5-flash-image"`
	ImageAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	ImageTimeout     time.Duration `envconfig:"IMAGE_TIMEOUT" default:"30s"`
	ImageMaxAttempts int           `envconfig:"IMAGE_MAX_ATTEMPTS" default:"3"`
	ImageRetryDelay  time.Duration `envconfig:"IMAGE_RETRY_DELAY" default:"2s"`

	// Supabase Storage for published illustrations.
	SupabaseURL        string `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket     string `envconfig:"SUPABASE_BUCKET" default:"stories"`

	// Redis story store. Every pipeline run opens its own connection.
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	StoryTTL      time.Duration `envconfig:"STORY_TTL" default:"72h"`

	// PostgreSQL holds the story ownership table. Leave DB_HOST empty to
	// disable the ownership/list features.
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"storybook_db"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBMaxConns int    `envconfig:"DB_MAX_CONNECTIONS" default:"10"`

	// RabbitMQ carries completion notifications for the email service.
	// Leave RABBITMQ_URL empty to disable publishing.
	RabbitMQURL        string `envconfig:"RABBITMQ_URL"`
	NotificationsQueue string `envconfig:"NOTIFICATIONS_QUEUE" default:"story_ready_notifications"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetMaskedDSN returns the DSN with the password masked for logging.
func (c *Config) GetMaskedDSN() string {
	dsn := c.GetDSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// OwnershipEnabled reports whether the relational ownership store is configured.
func (c *Config) OwnershipEnabled() bool {
	return c.DBHost != ""
}

// NotificationsEnabled reports whether completion notifications are configured.
func (c *Config) NotificationsEnabled() bool {
	return c.RabbitMQURL != ""
}

// LoadConfig loads configuration from an optional .env file and the environment.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	return &cfg, nil
}
