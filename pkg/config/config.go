package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	HTTPPort int `yaml:"http_port"`

	APIBaseURL    string        `yaml:"api_base_url"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`

	Storage  string `yaml:"storage"`
	CartFile string `yaml:"cart_file"`
	CartKey  string `yaml:"cart_key"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	AMQPURL        string `yaml:"amqp_url"`
	NotifyExchange string `yaml:"notify_exchange"`

	CatalogFile string `yaml:"catalog_file"`
}

func defaults() Config {
	return Config{
		AppEnv:         "dev",
		LogLevel:       "info",
		HTTPPort:       3333,
		APIBaseURL:     "http://localhost:3333",
		HTTPTimeout:    10 * time.Second,
		MaxConcurrent:  10,
		Storage:        StorageFile,
		CartFile:       "cart.json",
		CartKey:        "@RocketShoes:cart",
		RedisAddr:      "localhost:6379",
		NotifyExchange: "storefront.notifications",
		CatalogFile:    "server.json",
	}
}

// Load starts from defaults, applies the YAML file named by CONFIG_FILE if
// set, then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.overlayEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.MaxConcurrent = getEnvInt("MAX_CONCURRENT", c.MaxConcurrent)
	c.Storage = getEnv("CART_STORAGE", c.Storage)
	c.CartFile = getEnv("CART_FILE", c.CartFile)
	c.CartKey = getEnv("CART_KEY", c.CartKey)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.NotifyExchange = getEnv("NOTIFY_EXCHANGE", c.NotifyExchange)
	c.CatalogFile = getEnv("CATALOG_FILE", c.CatalogFile)
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("CART_STORAGE must be %q or %q, got %q", StorageFile, StorageRedis, c.Storage)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
