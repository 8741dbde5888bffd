package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Persistence: memory, postgres, sqlite or dynamodb
	DatabaseDriver string
	DatabaseURL    string

	// AWS configuration
	AWSRegion        string
	DynamoDBTable    string
	ProjectIndexName string // GSI1 - direct project id lookups
	EventBusName     string
	EventSource      string

	// Lambda configuration
	IsLambda bool

	// Supabase: auth, entitlements and object storage
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	ProfileTable       string

	// Object storage: supabase, gcs or inline
	StorageBackend     string
	StorageBucket      string
	GCSCredentialsFile string
	GCSPublicBaseURL   string

	// Model providers
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	OllamaURL       string
	ModelsFile      string

	// Entitlements: supabase or static
	EntitlementsBackend string
	StaticSubscribed    bool

	// Generation rate limit per user
	GenerationRate  float64
	GenerationBurst int

	// Logging
	LogLevel string

	// Authentication
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
	CORSOrigins   []string
	OTLPEndpoint  string

	// Domain limits
	Domain *domainconfig.DomainConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     env,
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 6*time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "memory"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable:    getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "canvas")),
		ProjectIndexName: getEnv("PROJECT_INDEX_NAME", "ProjectIndex"),
		EventBusName:     getEnv("EVENT_BUS_NAME", ""),
		EventSource:      getEnv("EVENT_SOURCE", "canvas.backend"),

		IsLambda: getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", getEnv("JWT_SECRET", "")),
		ProfileTable:       getEnv("PROFILE_TABLE", "profile"),

		StorageBackend:     getEnv("STORAGE_BACKEND", "supabase"),
		StorageBucket:      getEnv("STORAGE_BUCKET", "files"),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		GCSPublicBaseURL:   getEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaURL:       getEnv("OLLAMA_URL", ""),
		ModelsFile:      getEnv("MODELS_FILE", ""),

		EntitlementsBackend: getEnv("ENTITLEMENTS_BACKEND", "supabase"),
		StaticSubscribed:    getEnvBool("STATIC_SUBSCRIBED", true),

		GenerationRate:  getEnvFloat("GENERATION_RATE", 0.5),
		GenerationBurst: getEnvInt("GENERATION_BURST", 5),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"*"}),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		Domain: domainconfig.LoadDomainConfig(env),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "memory", "dynamodb":
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %s", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageBackend {
	case "supabase", "gcs", "inline":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.EntitlementsBackend {
	case "supabase", "static":
	default:
		return fmt.Errorf("unknown ENTITLEMENTS_BACKEND %q", c.EntitlementsBackend)
	}

	if c.GenerationRate <= 0 || c.GenerationBurst <= 0 {
		return fmt.Errorf("GENERATION_RATE and GENERATION_BURST must be positive")
	}

	if c.Environment == "production" {
		if c.SupabaseJWTSecret == "" && c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET or SUPABASE_URL is required in production")
		}
		if c.DatabaseDriver == "memory" {
			return fmt.Errorf("DATABASE_DRIVER=memory is not allowed in production")
		}
	}

	if c.Domain == nil {
		return fmt.Errorf("domain configuration missing")
	}
	return c.Domain.Validate()
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
