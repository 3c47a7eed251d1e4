package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// Config конфигурация сервиса, загружаемая из TOML файла
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	NotifyService NotifyServiceConfig `toml:"notify_service"`
	Waitlist      WaitlistConfig      `toml:"waitlist"`
	RateLimit     RateLimitConfig     `toml:"ratelimit"`
	Sweeper       SweeperConfig       `toml:"sweeper"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig настройки подключения к Redis
// Используется только при ratelimit.backend = "redis"
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// NotifyServiceConfig настройки клиента сервиса уведомлений
type NotifyServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// WaitlistConfig настройки листа ожидания
type WaitlistConfig struct {
	TTLHours int `toml:"ttl_hours"`
}

// RateLimitConfig настройки фиксированного окна для OTP запросов
type RateLimitConfig struct {
	Backend                string `toml:"backend"` // "memory" или "redis"
	MaxRequests            int    `toml:"max_requests"`
	WindowMinutes          int    `toml:"window_minutes"`
	CleanupIntervalMinutes int    `toml:"cleanup_interval_minutes"`
}

// SweeperConfig настройки фонового вытеснения просроченных записей
type SweeperConfig struct {
	IntervalMinutes int `toml:"interval_minutes"`
}

// Load загружает конфигурацию из TOML файла и подставляет значения по умолчанию
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults подставляет дефолты для незаполненных секций
func (c *Config) applyDefaults() {
	if c.Waitlist.TTLHours <= 0 {
		c.Waitlist.TTLHours = domain.DefaultWaitlistTTLHours
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = domain.DefaultRateLimitMaxRequests
	}
	if c.RateLimit.WindowMinutes <= 0 {
		c.RateLimit.WindowMinutes = domain.DefaultRateLimitWindowMinutes
	}
	if c.RateLimit.CleanupIntervalMinutes <= 0 {
		c.RateLimit.CleanupIntervalMinutes = domain.DefaultRateLimitCleanupMinutes
	}
	if c.Sweeper.IntervalMinutes <= 0 {
		c.Sweeper.IntervalMinutes = domain.DefaultSweepIntervalMinutes
	}
}

// validate проверяет обязательные поля
func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port is required")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
		return fmt.Errorf("config: ratelimit.backend must be \"memory\" or \"redis\", got %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when ratelimit.backend is \"redis\"")
	}
	return nil
}
