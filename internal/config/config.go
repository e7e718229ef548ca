package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Env               string        `mapstructure:"env"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	StaticDir         string        `mapstructure:"static_dir"`
	ManagerPages      []string      `mapstructure:"manager_pages"`
}

// IsProduction reports whether the server runs with production settings
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether internal error details may be exposed
func (c ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the connection string, preferring an explicit URL
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	Issuer          string        `mapstructure:"issuer"`
	SessionCookie   string        `mapstructure:"session_cookie"`
	WorkspaceCookie string        `mapstructure:"workspace_cookie"`
	InvitationTTL   time.Duration `mapstructure:"invitation_ttl"`
}

// RateLimitConfig selects the counter store and the per-family thresholds
type RateLimitConfig struct {
	Store         string        `mapstructure:"store"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Auth          LimitRule     `mapstructure:"auth"`
	Upload        LimitRule     `mapstructure:"upload"`
	Default       LimitRule     `mapstructure:"default"`
}

type LimitRule struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

type AuditConfig struct {
	BufferSize   int           `mapstructure:"buffer_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Kafka        KafkaConfig   `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether audit events are also published to Kafka
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	MaxAvatarBytes int64  `mapstructure:"max_avatar_bytes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads and validates configuration from file and environment variables
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads configuration without validating it. Tools that only need the
// database settings use it.
func Read() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	switch c.RateLimit.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported rate_limit.store %q", c.RateLimit.Store)
	}
	for name, rule := range map[string]LimitRule{
		"auth":    c.RateLimit.Auth,
		"upload":  c.RateLimit.Upload,
		"default": c.RateLimit.Default,
	} {
		if rule.Max <= 0 || rule.Window <= 0 {
			return fmt.Errorf("rate_limit.%s needs a positive max and window", name)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.middleware_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.manager_pages", []string{"/dashboard/team", "/dashboard/products", "/dashboard/settings"})

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "salespulse")
	v.SetDefault("database.database", "salespulse")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.session_cookie", "sb-access-token")
	v.SetDefault("auth.workspace_cookie", "sb-workspace-id")
	v.SetDefault("auth.invitation_ttl", "168h")

	// Rate limiting
	v.SetDefault("rate_limit.store", "memory")
	v.SetDefault("rate_limit.sweep_interval", "1m")
	v.SetDefault("rate_limit.auth.max", 5)
	v.SetDefault("rate_limit.auth.window", "15m")
	v.SetDefault("rate_limit.upload.max", 10)
	v.SetDefault("rate_limit.upload.window", "1h")
	v.SetDefault("rate_limit.default.max", 100)
	v.SetDefault("rate_limit.default.window", "15m")

	// Audit
	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.write_timeout", "5s")
	v.SetDefault("audit.kafka.topic", "security-events")

	// Storage
	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.public_base_url", "/uploads")
	v.SetDefault("storage.max_avatar_bytes", 5<<20)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// Server
	v.BindEnv("server.env", "APP_ENV")
	v.BindEnv("server.allowed_origins", "CORS_ORIGIN")

	// Rate limiting
	v.BindEnv("rate_limit.store", "RATE_LIMIT_STORE")
	v.BindEnv("rate_limit.default.max", "RATE_LIMIT_MAX")
	v.BindEnv("rate_limit.default.window", "RATE_LIMIT_WINDOW")

	// Audit
	v.BindEnv("audit.kafka.brokers", "KAFKA_BROKERS")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
	v.BindEnv("logging.file", "LOG_FILE")
}
