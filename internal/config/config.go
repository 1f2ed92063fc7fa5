// Package config загрузка конфигурации сервиса из TOML-файла
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	UserService UserServiceConfig `toml:"user_service"`
	Sweeper     SweeperConfig     `toml:"sweeper"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	Port            int `toml:"port"`
	ReadTimeout     int `toml:"read_timeout_seconds"`
	WriteTimeout    int `toml:"write_timeout_seconds"`
	ShutdownTimeout int `toml:"shutdown_timeout_seconds"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`

	MaxOpenConns    int `toml:"max_open_conns"`
	MaxIdleConns    int `toml:"max_idle_conns"`
	ConnMaxLifetime int `toml:"conn_max_lifetime_minutes"`
}

// DSN возвращает строку подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// MetricsConfig настройки метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
}

// UserServiceConfig настройки интеграции с UserService
type UserServiceConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout int    `toml:"timeout_seconds"`
}

// SweeperConfig настройки фоновой экспирации бронирований
type SweeperConfig struct {
	Enabled  bool `toml:"enabled"`
	Interval int  `toml:"interval_seconds"`
}

// Load читает конфигурацию из TOML-файла и проставляет значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30
	}
	if c.Logs.Path == "" {
		c.Logs.Path = "logs/app.log"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "court-booking-service"
	}
	if c.UserService.Timeout == 0 {
		c.UserService.Timeout = 5
	}
	if c.Sweeper.Interval == 0 {
		c.Sweeper.Interval = 60
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("config: database.name is required")
	}
	if c.UserService.BaseURL == "" {
		return fmt.Errorf("config: user_service.base_url is required")
	}
	return nil
}

// ReadTimeoutDuration таймаут чтения запроса
func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration таймаут записи ответа
func (c ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// ShutdownTimeoutDuration таймаут graceful shutdown
func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// TimeoutDuration таймаут запросов к UserService
func (c UserServiceConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// IntervalDuration период между проходами sweeper-а
func (c SweeperConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}
