// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cardshowhub/subscription-engine/internal/errlog"
)

// Config общая структура для хранения настроек движка подписок
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PaymentBackend          `yaml:"payment_backend"`
	PaymentGateway          `yaml:"payment_gateway"`
	RabbitConnection        `yaml:"rabbit_connection"`
	BroadcastQuota          `yaml:"broadcast_quota"`
	ErrorLog                errlog.Config `yaml:"error_log"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для проверки jwt-токена сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// PaymentBackend параметры бэкенда, создающего платёжные интенты
type PaymentBackend struct {
	BaseURL        string        `yaml:"base_url" env:"PAYMENT_BACKEND_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// PaymentGateway параметры платёжного шлюза
type PaymentGateway struct {
	APIURL         string `yaml:"api_url" env:"GATEWAY_API_URL"`
	SecretKey      string `yaml:"secret_key" env:"GATEWAY_SECRET_KEY"`
	PublishableKey string `yaml:"publishable_key" env:"GATEWAY_PUBLISHABLE_KEY"`
}

// RabbitConnection параметры подключения к RabbitMQ
type RabbitConnection struct {
	URL            string        `yaml:"url" env:"RABBITMQ_URL"`
	ConnectRetries int           `yaml:"connect_retries" env-default:"5"`
	RetryDelay     time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// BroadcastQuota лимиты рассылок по фазам шоу
type BroadcastQuota struct {
	PreShowLimit  int `yaml:"pre_show_limit" env-default:"3"`
	PostShowLimit int `yaml:"post_show_limit" env-default:"1"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
