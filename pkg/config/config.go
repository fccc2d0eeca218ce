package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config mirrors configs/config.yaml. Every field can be overridden with an
// ITAM_ prefixed environment variable (dots become underscores).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Mail     MailConfig     `mapstructure:"mail"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Warranty WarrantyConfig `mapstructure:"warranty"`
}

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"` // debug, release, test
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	ApplySchema     bool          `mapstructure:"apply_schema"`
	SchemaPath      string        `mapstructure:"schema_path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"` // empty disables the cache
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	Issuer             string        `mapstructure:"issuer"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json, text
	Output     string `mapstructure:"output"` // stdout, stderr, file
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromName       string `mapstructure:"from_name"`
	FromEmail      string `mapstructure:"from_email"`
}

type UploadsConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int64  `mapstructure:"max_size_mb"`
}

type WarrantyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"` // cron expression
	WindowDays int    `mapstructure:"window_days"`
	Recipient  string `mapstructure:"recipient"`
}

// Load reads the YAML file at path (default configs/config.yaml), layers
// environment overrides on top and validates the result. A missing file is
// fine, defaults plus environment variables carry a dev setup.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("ITAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvAliases(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnvAliases keeps the plain variable names deployments already export
// working next to the ITAM_ prefixed ones.
func bindEnvAliases(v *viper.Viper) {
	v.BindEnv("database.url", "ITAM_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("database.max_conns", "ITAM_DATABASE_MAX_CONNS", "DB_MAX_CONNS")
	v.BindEnv("database.min_conns", "ITAM_DATABASE_MIN_CONNS", "DB_MIN_CONNS")
	v.BindEnv("database.max_conn_idle_time", "ITAM_DATABASE_MAX_CONN_IDLE_TIME", "DB_MAX_CONN_IDLE_TIME")
	v.BindEnv("database.apply_schema", "ITAM_DATABASE_APPLY_SCHEMA", "APPLY_SCHEMA_ON_START")
	v.BindEnv("database.schema_path", "ITAM_DATABASE_SCHEMA_PATH", "SCHEMA_PATH")
	v.BindEnv("jwt.secret", "ITAM_JWT_SECRET", "JWT_SECRET")
	v.BindEnv("redis.addr", "ITAM_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("cors.allow_origins", "ITAM_CORS_ALLOW_ORIGINS", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("mail.sendgrid_api_key", "ITAM_MAIL_SENDGRID_API_KEY", "SENDGRID_API_KEY")
	v.BindEnv("mail.from_email", "ITAM_MAIL_FROM_EMAIL", "SENDER_EMAIL")
	v.BindEnv("mail.from_name", "ITAM_MAIL_FROM_NAME", "SENDER_NAME")
	v.BindEnv("server.host", "ITAM_SERVER_HOST", "HOST")
	v.BindEnv("server.port", "ITAM_SERVER_PORT", "PORT")
	v.BindEnv("server.mode", "ITAM_SERVER_MODE", "GIN_MODE")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.apply_schema", true)
	v.SetDefault("database.schema_path", "pkg/db/schema.sql")

	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("jwt.issuer", "itam")
	v.SetDefault("jwt.access_token_expire", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_expire", 24*time.Hour)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size_mb", 10)

	v.SetDefault("warranty.enabled", true)
	v.SetDefault("warranty.schedule", "0 8 * * *")
	v.SetDefault("warranty.window_days", 30)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s", cfg.Server.Mode)
	}
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters in release mode")
	}
	if cfg.JWT.AccessTokenExpire <= 0 || cfg.JWT.RefreshTokenExpire <= 0 {
		return fmt.Errorf("jwt token lifetimes must be positive")
	}
	if cfg.Warranty.Enabled && cfg.Warranty.WindowDays <= 0 {
		return fmt.Errorf("warranty window_days must be positive")
	}
	return nil
}

// IsDebug reports whether the server runs in debug mode. Cookie Secure and
// gin mode both key off this.
func (c *Config) IsDebug() bool {
	return c.Server.Mode == "debug"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
