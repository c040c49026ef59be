// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Realtime   RealtimeConfig   `mapstructure:"realtime"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Tenant     TenantConfig     `mapstructure:"tenant"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ProviderConfig describes the messaging gateway the instances live on.
// BaseURL is used when an instance has no base URL of its own.
type ProviderConfig struct {
	BaseURL        string               `mapstructure:"base_url"`
	Timeout        int                  `mapstructure:"timeout"`
	AttemptTimeout int                  `mapstructure:"attempt_timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`
	Timeout          int     `mapstructure:"timeout"`
	FailureRatio     float64 `mapstructure:"failure_ratio"`
	ConsecutiveFails uint32  `mapstructure:"consecutive_fails"`
}

type WebhookConfig struct {
	// IgnoreFromMe drops provider echoes of messages sent by the account itself.
	IgnoreFromMe bool  `mapstructure:"ignore_from_me"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

type RealtimeConfig struct {
	BufferSize       int `mapstructure:"buffer_size"`
	HeartbeatSeconds int `mapstructure:"heartbeat_seconds"`
	RetryMillis      int `mapstructure:"retry_millis"`
}

type AuditConfig struct {
	PersistRaw    bool   `mapstructure:"persist_raw"`
	RetentionDays int    `mapstructure:"retention_days"`
	CleanupCron   string `mapstructure:"cleanup_cron"`
	DebugLimit    int    `mapstructure:"debug_limit"`
}

type TenantConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

type MiddlewareConfig struct {
	RateLimit      int      `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	RequestTimeout int      `mapstructure:"request_timeout"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Encoding   string `mapstructure:"encoding"`
	FileEnable bool   `mapstructure:"file_enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("INBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.db", 0)
	v.SetDefault("provider.base_url", "https://api.z-api.io")
	v.SetDefault("provider.timeout", 30)
	v.SetDefault("provider.attempt_timeout", 8)
	v.SetDefault("provider.circuit_breaker.max_requests", 3)
	v.SetDefault("provider.circuit_breaker.interval", 60)
	v.SetDefault("provider.circuit_breaker.timeout", 60)
	v.SetDefault("provider.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("provider.circuit_breaker.consecutive_fails", 5)
	v.SetDefault("webhook.ignore_from_me", false)
	v.SetDefault("webhook.max_body_bytes", 1<<20)
	v.SetDefault("realtime.buffer_size", 64)
	v.SetDefault("realtime.heartbeat_seconds", 25)
	v.SetDefault("realtime.retry_millis", 3000)
	v.SetDefault("audit.persist_raw", true)
	v.SetDefault("audit.retention_days", 30)
	v.SetDefault("audit.cleanup_cron", "0 0 3 * * *")
	v.SetDefault("audit.debug_limit", 5)
	v.SetDefault("tenant.cache_ttl_seconds", 300)
	v.SetDefault("middleware.rate_limit", 100)
	v.SetDefault("middleware.rate_limit_burst", 1000)
	v.SetDefault("middleware.request_timeout", 30)
	v.SetDefault("middleware.enable_cors", true)
	v.SetDefault("middleware.allowed_origins", []string{"*"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
	v.SetDefault("logging.max_size_mb", 64)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age_days", 7)
}

// GetDSN returns PostgreSQL connection string.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GetURL returns the DSN in URL form, as golang-migrate expects.
func (d *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func (p *ProviderConfig) TimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

func (p *ProviderConfig) AttemptTimeoutDuration() time.Duration {
	return time.Duration(p.AttemptTimeout) * time.Second
}

func (t *TenantConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}
