package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Runtime      RuntimeConfig
	Backend      BackendConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Log          LogConfig
	Session      SessionConfig
	Notification NotificationConfig
	Map          MapConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins []string
}

type BackendConfig struct {
	RequestTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	CategoryTTL time.Duration
	ShopTTL     time.Duration
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type SessionConfig struct {
	Profile string
}

type NotificationConfig struct {
	TTL time.Duration
}

type MapConfig struct {
	ScriptURL string
	Version   string
	Plugins   []string
}

// Load читает настройки процесса из .env и окружения, затем runtime-документ.
// Ошибка runtime-документа фатальна для старта.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// .env необязателен, окружения достаточно
	if _, statErr := os.Stat(".env"); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),

			CORSOrigins: parseList(v.GetString("CORS_ORIGINS")),
		},
		Backend: BackendConfig{
			RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT")) * time.Millisecond,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			CategoryTTL: time.Duration(v.GetInt("CATEGORY_CACHE_TTL")) * time.Second,
			ShopTTL:     time.Duration(v.GetInt("SHOP_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Session: SessionConfig{
			Profile: v.GetString("SESSION_PROFILE"),
		},
		Notification: NotificationConfig{
			TTL: time.Duration(v.GetInt("NOTIFICATION_TTL")) * time.Millisecond,
		},
		Map: MapConfig{
			ScriptURL: v.GetString("AMAP_SCRIPT_URL"),
			Version:   v.GetString("AMAP_VERSION"),
			Plugins:   parseList(v.GetString("AMAP_PLUGINS")),
		},
	}

	cfg.applyDefaults()

	runtimePath := v.GetString("FOODMAP_RUNTIME_CONFIG")
	if runtimePath == "" {
		runtimePath = DefaultRuntimePath
	}
	runtime, err := LoadRuntime(runtimePath)
	if err != nil {
		return nil, err
	}
	cfg.Runtime = runtime

	return cfg, nil
}

// Set default values if not provided
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Backend.RequestTimeout == 0 {
		c.Backend.RequestTimeout = 10000 * time.Millisecond
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Cache.CategoryTTL == 0 {
		c.Cache.CategoryTTL = 5 * time.Minute
	}
	if c.Cache.ShopTTL == 0 {
		c.Cache.ShopTTL = 2 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Session.Profile == "" {
		c.Session.Profile = "default"
	}
	if c.Notification.TTL == 0 {
		c.Notification.TTL = 3000 * time.Millisecond
	}
	if c.Map.ScriptURL == "" {
		c.Map.ScriptURL = "https://webapi.amap.com/maps"
	}
	if c.Map.Version == "" {
		c.Map.Version = "2.0"
	}
	if len(c.Map.Plugins) == 0 {
		c.Map.Plugins = []string{"AMap.Scale", "AMap.ToolBar", "AMap.ControlBar", "AMap.Geolocation"}
	}
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
