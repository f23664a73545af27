package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port        string
	Env         string
	CORSOrigins []string

	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis, optional. When empty the plan lock and undo slots stay in-process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Plan engine
	LockTimeout         time.Duration
	UndoTTL             time.Duration
	DefaultRedlineCents int64
	DefaultTaxPct       float64
	DefaultServicePct   float64
	DefaultGratuityPct  float64
	ExcludedCategories  []string

	// Identity
	JWTSecret        string
	AllowDevIdentity bool
	DevUserID        string

	// Internal catalog import
	InternalAPIKey string

	// Tracing
	OTelEnabled     bool
	OTelEndpoint    string
	OTelHeaders     string
	OTelInsecure    bool
	OTelSampleRatio float64
	Version         string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	env := getEnv("ENV", "development")
	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         env,
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "weddingbudget.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "weddingbudget"),
		DBPassword: getEnv("DB_PASSWORD", "weddingbudget"),
		DBName:     getEnv("DB_NAME", "weddingbudget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LockTimeout:         getEnvDuration("LOCK_TIMEOUT", 5*time.Second),
		UndoTTL:             getEnvDuration("UNDO_TTL", 30*time.Minute),
		DefaultRedlineCents: getEnvInt64("DEFAULT_REDLINE_CENTS", 4_000_000),
		DefaultTaxPct:       getEnvPct("DEFAULT_TAX_PCT", 0.09),
		DefaultServicePct:   getEnvPct("DEFAULT_SERVICE_PCT", 0.10),
		DefaultGratuityPct:  getEnvPct("DEFAULT_GRATUITY_PCT", 0.15),
		ExcludedCategories:  getEnvList("OPTIMIZER_EXCLUDED_CATEGORIES", []string{"lead"}),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		AllowDevIdentity: getEnvBool("ALLOW_DEV_IDENTITY", env != "production"),
		DevUserID:        getEnv("DEV_USER_ID", "demo-user"),

		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),

		OTelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelHeaders:     getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OTelInsecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OTelSampleRatio: getEnvPct("OTEL_SAMPLER_RATIO", 0.1),
		Version:         getEnv("APP_VERSION", "dev"),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvInt64(key string, defaultValue int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

// getEnvPct parses a fractional rate and rejects anything outside [0,1].
func getEnvPct(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
