package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	// ErrReadConfig возвращается, когда файл конфигурации не удалось прочитать
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig возвращается, когда конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LockerMemory = "memory"
	LockerRedis  = "redis"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Booking   BookingConfig   `toml:"booking"`
	Redis     RedisConfig     `toml:"redis"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Outbox    OutboxConfig    `toml:"outbox"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
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

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// StorageConfig выбор хранилища: postgres или memory (для локального запуска)
// SeedFile используется только с memory: мастера, услуги и расписание для старта
type StorageConfig struct {
	Driver   string `toml:"driver"`
	SeedFile string `toml:"seed_file"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// BookingConfig бизнес-параметры бронирования
type BookingConfig struct {
	LeadTimeMinutes        int    `toml:"lead_time_minutes"`
	MaxHorizonDays         int    `toml:"max_horizon_days"`
	LockWaitMs             int    `toml:"lock_wait_ms"`
	LockTTLMs              int    `toml:"lock_ttl_ms"`
	MaxClientReschedules   int    `toml:"max_client_reschedules"`
	MaxProviderReschedules int    `toml:"max_provider_reschedules"`
	RescheduleWindowDays   int    `toml:"reschedule_window_days"`
	DefaultTimezone        string `toml:"default_timezone"`
	Locker                 string `toml:"locker"`

	// Минимум часов до начала сеанса для переноса клиентом и отмены клиентом или мастером
	MinRescheduleHours     int `toml:"min_reschedule_hours"`
	MinCancelHours         int `toml:"min_cancel_hours"`
	MinProviderCancelHours int `toml:"min_provider_cancel_hours"`
}

func (b BookingConfig) LeadTime() time.Duration {
	return time.Duration(b.LeadTimeMinutes) * time.Minute
}

func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitMs) * time.Millisecond
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLMs) * time.Millisecond
}

func (b BookingConfig) MinRescheduleNotice() time.Duration {
	return time.Duration(b.MinRescheduleHours) * time.Hour
}

func (b BookingConfig) MinCancelNotice() time.Duration {
	return time.Duration(b.MinCancelHours) * time.Hour
}

func (b BookingConfig) MinProviderCancelNotice() time.Duration {
	return time.Duration(b.MinProviderCancelHours) * time.Hour
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig если Brokers пуст, события пишутся в лог
type KafkaConfig struct {
	Brokers           []string `toml:"brokers"`
	NotificationTopic string   `toml:"notification_topic"`
	WriteTimeoutMs    int      `toml:"write_timeout_ms"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func (k KafkaConfig) WriteTimeout() time.Duration {
	return time.Duration(k.WriteTimeoutMs) * time.Millisecond
}

type OutboxConfig struct {
	Enabled        bool `toml:"enabled"`
	PollIntervalMs int  `toml:"poll_interval_ms"`
	BatchSize      int  `toml:"batch_size"`
}

func (o OutboxConfig) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalMs) * time.Millisecond
}

// RateLimitConfig ограничение запросов на IP клиента
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "spa_booking",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
		Logs: LogsConfig{
			File:  "logs/app.log",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			ServiceName: "spa-booking-service",
			Path:        "/metrics",
		},
		Booking: BookingConfig{
			LeadTimeMinutes:        60,
			MaxHorizonDays:         30,
			LockWaitMs:             2000,
			LockTTLMs:              10000,
			MaxClientReschedules:   2,
			MaxProviderReschedules: 5,
			RescheduleWindowDays:   90,
			DefaultTimezone:        "UTC",
			Locker:                 LockerMemory,
			MinRescheduleHours:     4,
			MinCancelHours:         2,
			MinProviderCancelHours: 1,
		},
		Kafka: KafkaConfig{
			NotificationTopic: "booking.notifications",
			WriteTimeoutMs:    5000,
		},
		Outbox: OutboxConfig{
			Enabled:        true,
			PollIntervalMs: 1000,
			BatchSize:      100,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// Load читает конфигурацию из TOML файла поверх значений по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch c.Booking.Locker {
	case LockerMemory:
	case LockerRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis.addr is required for redis locker", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown booking.locker %q", ErrInvalidConfig, c.Booking.Locker)
	}

	if c.Booking.LeadTimeMinutes < 0 {
		return fmt.Errorf("%w: booking.lead_time_minutes must be >= 0", ErrInvalidConfig)
	}
	if c.Booking.MaxHorizonDays <= 0 {
		return fmt.Errorf("%w: booking.max_horizon_days must be > 0", ErrInvalidConfig)
	}
	if c.Booking.LockWaitMs <= 0 || c.Booking.LockTTLMs <= 0 {
		return fmt.Errorf("%w: booking lock timings must be > 0", ErrInvalidConfig)
	}
	if c.Booking.MaxClientReschedules < 0 || c.Booking.MaxProviderReschedules < 0 {
		return fmt.Errorf("%w: reschedule limits must be >= 0", ErrInvalidConfig)
	}
	if c.Booking.MinRescheduleHours < 0 || c.Booking.MinCancelHours < 0 || c.Booking.MinProviderCancelHours < 0 {
		return fmt.Errorf("%w: booking notice hours must be >= 0", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Booking.DefaultTimezone); err != nil {
		return fmt.Errorf("%w: booking.default_timezone: %v", ErrInvalidConfig, err)
	}

	if c.Outbox.Enabled && (c.Outbox.PollIntervalMs <= 0 || c.Outbox.BatchSize <= 0) {
		return fmt.Errorf("%w: outbox poll interval and batch size must be > 0", ErrInvalidConfig)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit values must be > 0", ErrInvalidConfig)
	}

	return nil
}
