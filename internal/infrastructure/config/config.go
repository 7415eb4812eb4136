package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	JWTSecret   string `env:"JWT_SECRET,   required"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:3000"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`

	// AccessTokenTTL governs signing-time expiry of access tokens.
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=10h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=72h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL,   default=1h"`

	MailWorkers int `env:"MAIL_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	Kafka KafkaConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type KafkaConfig struct {
	Broker    string `env:"KAFKA_BROKER,     default=localhost:9092"`
	MailTopic string `env:"KAFKA_MAIL_TOPIC, default=account-emails"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
