package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth" validate:"required"`
	Geo          GeoConfig          `mapstructure:"geo" validate:"required"`
	Payment      PaymentConfig      `mapstructure:"payment" validate:"required"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel          string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
}

// DatabaseConfig selects the storage backend. The memory driver keeps all
// state in process and is meant for local development.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL             string        `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// GeoConfig contains discovery radii in kilometres.
type GeoConfig struct {
	DefaultRadiusKm      float64 `mapstructure:"default_radius_km" validate:"gt=0"`
	NotificationRadiusKm float64 `mapstructure:"notification_radius_km" validate:"gt=0"`
}

// PaymentConfig selects and configures the payment gateway.
type PaymentConfig struct {
	Provider      string     `mapstructure:"provider" validate:"required,oneof=virtual toss"`
	OrderIDPrefix string     `mapstructure:"order_id_prefix" validate:"required,alphanum"`
	Toss          TossConfig `mapstructure:"toss"`
}

// TossConfig configures the Toss Payments REST client.
type TossConfig struct {
	SecretKey  string        `mapstructure:"secret_key"`
	BaseURL    string        `mapstructure:"base_url" validate:"omitempty,url"`
	SuccessURL string        `mapstructure:"success_url" validate:"omitempty,url"`
	FailURL    string        `mapstructure:"fail_url" validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// NotificationConfig configures asynchronous notification delivery.
type NotificationConfig struct {
	Sink        string `mapstructure:"sink" validate:"required,oneof=log rabbitmq"`
	RabbitMQURL string `mapstructure:"rabbitmq_url" validate:"required_if=Sink rabbitmq"`
	QueueName   string `mapstructure:"queue_name" validate:"required"`
	WorkerCount int    `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int    `mapstructure:"queue_size" validate:"gte=1"`
}

// RedisConfig configures the optional Redis client.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// RateLimitConfig configures the token bucket applied to mutating endpoints.
type RateLimitConfig struct {
	Capacity        int           `mapstructure:"capacity" validate:"gte=1"`
	RefillPerSecond int           `mapstructure:"refill_per_second" validate:"gte=1"`
	TTL             time.Duration `mapstructure:"ttl"`
}
