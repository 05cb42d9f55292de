package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is built once at startup and passed to whatever needs it.
type Config struct {
	Env      string `mapstructure:"ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	MongoTimeout  time.Duration `mapstructure:"MONGO_TIMEOUT"`

	RedisEnabled  bool          `mapstructure:"REDIS_ENABLED"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	SlotLockTTL             time.Duration `mapstructure:"SLOT_LOCK_TTL"`
	SlotLockWait            time.Duration `mapstructure:"SLOT_LOCK_WAIT"`
	EnforceHoursForAll      bool          `mapstructure:"SCHEDULING_ENFORCE_HOURS_FOR_ALL"`
	JobsEnabled             bool          `mapstructure:"JOBS_ENABLED"`
	CompletionSchedule      string        `mapstructure:"JOBS_COMPLETION_SCHEDULE"`
	MigrationsEnabled       bool          `mapstructure:"MIGRATIONS_ENABLED"`
	ShutdownTimeout         time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	GeminiAPIKey            string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel             string        `mapstructure:"GEMINI_MODEL"`
	AssistantRequestTimeout time.Duration `mapstructure:"ASSISTANT_TIMEOUT"`
}

var keys = []string{
	"ENV", "PORT", "LOG_LEVEL",
	"MONGO_URI", "MONGO_DATABASE", "MONGO_TIMEOUT",
	"REDIS_ENABLED", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"JWT_SECRET", "CORS_ORIGINS",
	"SLOT_LOCK_TTL", "SLOT_LOCK_WAIT", "SCHEDULING_ENFORCE_HOURS_FOR_ALL",
	"JOBS_ENABLED", "JOBS_COMPLETION_SCHEDULE", "MIGRATIONS_ENABLED", "SHUTDOWN_TIMEOUT",
	"GEMINI_API_KEY", "GEMINI_MODEL", "ASSISTANT_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "caresync")
	v.SetDefault("MONGO_TIMEOUT", 10*time.Second)
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 10*time.Minute)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SLOT_LOCK_TTL", 5*time.Second)
	v.SetDefault("SLOT_LOCK_WAIT", 2*time.Second)
	v.SetDefault("SCHEDULING_ENFORCE_HOURS_FOR_ALL", false)
	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("JOBS_COMPLETION_SCHEDULE", "*/15 * * * *")
	v.SetDefault("MIGRATIONS_ENABLED", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("ASSISTANT_TIMEOUT", 30*time.Second)
}

/*
* Load .env into the process environment when present
* Read every key from the environment over the defaults
* Validate what the server cannot start without
 */
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, reading configuration from the environment")
	}
	return FromViper(viper.New())
}

func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.MongoURI == "" || c.MongoDatabase == "" {
		return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required")
	}
	if c.SlotLockTTL <= 0 {
		return fmt.Errorf("SLOT_LOCK_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) AssistantEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
