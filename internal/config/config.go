package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "BACKOFFICE"

// Config конфигурация приложения
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Stock   StockConfig   `mapstructure:"stock"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port      string          `mapstructure:"port"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig лимит запросов на IP; rps <= 0 выключает лимитер
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Mongo  MongoConfig `mapstructure:"mongo"`
	MySQL  MySQLConfig `mapstructure:"mysql"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type OrdersConfig struct {
	// SettlePaymentOnCompletion помечает оплату Paid при переходе в Completed
	SettlePaymentOnCompletion bool `mapstructure:"settle_payment_on_completion"`
}

type StockConfig struct {
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

type SeedConfig struct {
	Path string `mapstructure:"path"`
}

const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "backoffice")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit.rps", 20)
	v.SetDefault("server.rate_limit.burst", 40)
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "backoffice")
	v.SetDefault("storage.mysql.dsn", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "backoffice.orders")
	v.SetDefault("orders.settle_payment_on_completion", true)
	v.SetDefault("stock.low_stock_threshold", 5)
	v.SetDefault("seed.path", "")
}

// Load читает .env (если есть), затем YAML-файл (если путь задан и файл существует),
// затем переменные окружения BACKOFFICE_*.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет полноту конфигурации для выбранного драйвера
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Storage.Mongo.URI == "" || c.Storage.Mongo.Database == "" {
			return fmt.Errorf("mongo uri and database are required")
		}
	case DriverMySQL:
		if c.Storage.MySQL.DSN == "" {
			return fmt.Errorf("mysql dsn is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required when redis is enabled")
	}
	if c.Stock.LowStockThreshold < 0 {
		return fmt.Errorf("stock low_stock_threshold must not be negative")
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit burst must be at least 1")
	}
	return nil
}

// Addr адрес для http.Server
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Server.Port, ":") {
		return c.Server.Port
	}
	return ":" + c.Server.Port
}
