package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TEOLGOGO"

// keys with no default that must still be bound to the environment
var unboundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"payment.toss.secret_key",
	"notification.rabbitmq_url",
	"redis.password",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_header_timeout", 5*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("geo.default_radius_km", 5.0)
	v.SetDefault("geo.notification_radius_km", 5.0)

	v.SetDefault("payment.provider", "virtual")
	v.SetDefault("payment.order_id_prefix", "TEOLGOGO")
	v.SetDefault("payment.toss.base_url", "https://api.tosspayments.com/v1")
	v.SetDefault("payment.toss.timeout", 10*time.Second)

	v.SetDefault("notification.sink", "log")
	v.SetDefault("notification.queue_name", "teolgogo.notifications")
	v.SetDefault("notification.worker_count", 2)
	v.SetDefault("notification.queue_size", 256)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.capacity", 30)
	v.SetDefault("rate_limit.refill_per_second", 1)
	v.SetDefault("rate_limit.ttl", 10*time.Minute)
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, an optional .env file and TEOLGOGO_* environment
// variables, in increasing order of precedence, then validates the result.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range unboundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags and the cross-field rules
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Payment.Provider == "toss" && cfg.Payment.Toss.SecretKey == "" {
		return fmt.Errorf("config validation failed: payment.toss.secret_key is required for the toss provider")
	}
	return nil
}
