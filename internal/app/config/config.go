package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceHost string
	ServicePort int
	JWT         JWTConfig
	Redis       RedisConfig
	Minio       MinioConfig
	Upstream    UpstreamConfig
	Paystack    PaystackConfig
}

type JWTConfig struct {
	Token         string
	ExpiresIn     time.Duration
	SigningMethod jwt.SigningMethod
}

type RedisConfig struct {
	Host        string
	Password    string
	Port        int
	User        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UpstreamConfig points at the cloud REST API this service provisions
// against.
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type PaystackConfig struct {
	PublicKey string
	SecretKey string
	BaseURL   string
	// CallbackBaseURL is this service's externally reachable address, used
	// to build the payment redirect callback.
	CallbackBaseURL string
}

const (
	envRedisHost = "REDIS_HOST"
	envRedisPort = "REDIS_PORT"
	envRedisUser = "REDIS_USER"
	envRedisPass = "REDIS_PASSWORD"

	envMinioEndpoint  = "MINIO_ENDPOINT"
	envMinioAccessKey = "MINIO_ACCESS_KEY"
	envMinioSecretKey = "MINIO_SECRET_KEY"
	envMinioBucket    = "MINIO_BUCKET"

	envUpstreamBaseURL = "CLOUD_API_BASE_URL"
	envUpstreamAPIKey  = "CLOUD_API_KEY"

	envPaystackPublicKey = "PAYSTACK_PUBLIC_KEY"
	envPaystackSecretKey = "PAYSTACK_SECRET_KEY"
	envPaystackBaseURL   = "PAYSTACK_BASE_URL"
	envCallbackBaseURL   = "SERVICE_CALLBACK_BASE_URL"

	envJWTSecret = "JWT_SECRET"
)

func NewConfig() (*Config, error) {
	var err error

	configName := "config"
	_ = godotenv.Load()
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")
	viper.WatchConfig()

	err = viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = viper.Unmarshal(cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv(envJWTSecret)
	if jwtSecret == "" {
		return nil, fmt.Errorf("%s must be set", envJWTSecret)
	}
	cfg.JWT = JWTConfig{
		Token:         jwtSecret,
		ExpiresIn:     time.Hour,
		SigningMethod: jwt.SigningMethodHS256,
	}

	cfg.Redis.Host = os.Getenv(envRedisHost)
	cfg.Redis.Port, err = strconv.Atoi(os.Getenv(envRedisPort))
	if err != nil {
		return nil, fmt.Errorf("redis port must be int value: %w", err)
	}
	cfg.Redis.Password = os.Getenv(envRedisPass)
	cfg.Redis.User = os.Getenv(envRedisUser)
	cfg.Redis.DialTimeout = 10 * time.Second
	cfg.Redis.ReadTimeout = 10 * time.Second

	cfg.Minio = MinioConfig{
		Endpoint:  os.Getenv(envMinioEndpoint),
		AccessKey: os.Getenv(envMinioAccessKey),
		SecretKey: os.Getenv(envMinioSecretKey),
		Bucket:    os.Getenv(envMinioBucket),
		UseSSL:    false,
	}
	if cfg.Minio.Bucket == "" {
		cfg.Minio.Bucket = "payment-proofs"
	}

	cfg.Upstream = UpstreamConfig{
		BaseURL: os.Getenv(envUpstreamBaseURL),
		APIKey:  os.Getenv(envUpstreamAPIKey),
		Timeout: 30 * time.Second,
	}
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("%s must be set", envUpstreamBaseURL)
	}

	cfg.Paystack = PaystackConfig{
		PublicKey:       os.Getenv(envPaystackPublicKey),
		SecretKey:       os.Getenv(envPaystackSecretKey),
		BaseURL:         os.Getenv(envPaystackBaseURL),
		CallbackBaseURL: os.Getenv(envCallbackBaseURL),
	}
	if cfg.Paystack.BaseURL == "" {
		cfg.Paystack.BaseURL = "https://api.paystack.co"
	}

	log.Info("config parsed")

	return cfg, nil
}
