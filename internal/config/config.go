// Package config содержит логику чтения конфигурации сервиса проката.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingJWTKey возвращается, если не задан ключ подписи токенов.
var ErrMissingJWTKey = errors.New("jwt private key is not defined")

const (
	defaultRunAddress = "localhost:8080"
	defaultBcryptCost = 12
	defaultLogLevel   = "info"
)

// Config содержит параметры конфигурации сервиса проката.
type Config struct {
	RunAddress    string        `env:"RUN_ADDRESS"`
	DatabaseURI   string        `env:"DATABASE_URI"`
	JWTPrivateKey string        `env:"JWT_PRIVATE_KEY"`
	BcryptCost    int           `env:"BCRYPT_COST"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"`
	RabbitMQURL   string        `env:"RABBITMQ_URL"`
	LogLevel      string        `env:"LOG_LEVEL"`
}

// Parse считывает конфигурацию из файла .env, переменных окружения и флагов командной строки.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.JWTPrivateKey, "k", "", "private key for signing auth tokens")
	flag.IntVar(&cfg.BcryptCost, "c", defaultBcryptCost, "bcrypt cost for password hashing")
	flag.DurationVar(&cfg.TokenTTL, "t", 0, "auth token lifetime, 0 means no expiry")
	flag.StringVar(&cfg.RabbitMQURL, "q", "", "RabbitMQ URL for rental events")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.JWTPrivateKey != "" {
		cfg.JWTPrivateKey = envCfg.JWTPrivateKey
	}
	if envCfg.BcryptCost != 0 {
		cfg.BcryptCost = envCfg.BcryptCost
	}
	if envCfg.TokenTTL != 0 {
		cfg.TokenTTL = envCfg.TokenTTL
	}
	if envCfg.RabbitMQURL != "" {
		cfg.RabbitMQURL = envCfg.RabbitMQURL
	}
	if envCfg.LogLevel != "" {
		cfg.LogLevel = envCfg.LogLevel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaultBcryptCost
	}

	if cfg.JWTPrivateKey == "" {
		return nil, ErrMissingJWTKey
	}

	return cfg, nil
}
