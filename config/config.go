// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           int    `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
	ServiceToken   string `mapstructure:"service_token"`

	DBDriver    string `mapstructure:"db_driver"` // "sqlite" or "postgres"
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`

	JWTSecret  string        `mapstructure:"jwt_secret"`
	JWTTTL     time.Duration `mapstructure:"jwt_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	AMQPURL        string `mapstructure:"amqp_url"`
	AMQPEventQueue string `mapstructure:"amqp_event_queue"`
	AMQPScoreQueue string `mapstructure:"amqp_score_queue"`

	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`

	ExportBucket          string `mapstructure:"export_bucket"`
	ExportEndpoint        string `mapstructure:"export_endpoint"`
	ExportRegion          string `mapstructure:"export_region"`
	ExportAccessKeyID     string `mapstructure:"export_access_key_id"`
	ExportSecretAccessKey string `mapstructure:"export_secret_access_key"`
}

var defaults = map[string]interface{}{
	"port":                     5200,
	"allowed_origins":          "http://localhost:3000",
	"service_token":            "",
	"db_driver":                "sqlite",
	"database_url":             "",
	"sqlite_path":              "database.db",
	"jwt_secret":               "",
	"jwt_ttl":                  "24h",
	"bcrypt_cost":              12,
	"redis_addr":               "",
	"redis_password":           "",
	"redis_db":                 0,
	"amqp_url":                 "",
	"amqp_event_queue":         "coinquest.ledger_events",
	"amqp_score_queue":         "coinquest.game_scores",
	"reconcile_interval":       "10m",
	"export_bucket":            "",
	"export_endpoint":          "",
	"export_region":            "auto",
	"export_access_key_id":     "",
	"export_secret_access_key": "",
}

// Load reads .env (if any), an optional config.yaml in the working directory,
// then environment variables. Environment wins.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be set when DB_DRIVER=sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.ReconcileInterval <= 0 {
		return errors.New("RECONCILE_INTERVAL must be positive")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS and trims each entry.
func (c *Config) Origins() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func (c *Config) ExportEnabled() bool {
	return c.ExportBucket != ""
}
