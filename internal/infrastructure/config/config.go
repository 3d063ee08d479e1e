package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Category    CategoryConfig  `mapstructure:"category"`
	Shopping    ShoppingConfig  `mapstructure:"shopping"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// DatabaseConfig 資料庫配置
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // memory | postgres | sqlite
	DSN    string `mapstructure:"dsn"`
}

// CategoryConfig 分類字典來源；皆為空時使用內建字典
type CategoryConfig struct {
	DictionaryPath string        `mapstructure:"dictionary_path"`
	DictionaryURL  string        `mapstructure:"dictionary_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
}

// ShoppingConfig 購物清單設定
type ShoppingConfig struct {
	MaxSpanDays int `mapstructure:"max_span_days"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// 支援的後端
var (
	cacheBackends   = map[string]bool{"memory": true, "redis": true}
	databaseDrivers = map[string]bool{"memory": true, "postgres": true, "sqlite": true}
)

// LoadConfig 載入設定（.env、config.yaml、環境變數）
func LoadConfig() (*Config, error) {
	return Load(".", "./configs")
}

// Load 由指定目錄尋找 config.yaml 並載入設定
func Load(configPaths ...string) (*Config, error) {
	// 加載 .env 文件（可選）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常見的無前綴環境變數
	_ = v.BindEnv("log_level", "APP_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_file", "APP_LOG_FILE", "LOG_FILE")
	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.dsn", "APP_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("cache.redis_addr", "APP_CACHE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("cache.enabled", "APP_CACHE_ENABLED", "CACHE_ENABLED")
	_ = v.BindEnv("rate_limit.enabled", "APP_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("dedup_window", "APP_DEDUP_WINDOW", "DEDUP_WINDOW")

	// 設定設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-planner")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// 資料庫設定
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.dsn", "")

	// 分類字典
	v.SetDefault("category.dictionary_path", "")
	v.SetDefault("category.dictionary_url", "")
	v.SetDefault("category.fetch_timeout", "10s")

	// 購物清單
	v.SetDefault("shopping.max_span_days", 62)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid server max body bytes")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if !cacheBackends[config.Cache.Backend] {
			return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.Backend == "memory" && config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
		if config.Cache.Backend == "redis" && config.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address is required")
		}
	}

	// 驗證資料庫設定
	if !databaseDrivers[config.Database.Driver] {
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.Driver != "memory" && config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required for driver %q", config.Database.Driver)
	}

	if config.Shopping.MaxSpanDays <= 0 {
		return fmt.Errorf("invalid shopping max span days")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}

// Addr 伺服器監聽位址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
