package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DSATRACK"

// 存储后端
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	Streak  StreakConfig  `mapstructure:"streak"`
	Search  SearchConfig  `mapstructure:"search"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr        string `mapstructure:"listen_addr"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
}

// AuthConfig 鉴权配置
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	DevUser       string `mapstructure:"dev_user"` // 无 token 时的本地用户，空表示关闭
}

// StorageConfig 存储配置
type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	DBPath string      `mapstructure:"db_path"`
	Mongo  MongoConfig `mapstructure:"mongo"`
}

// MongoConfig 文档库配置
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// StreakConfig 连续打卡配置
type StreakConfig struct {
	CacheSize  int `mapstructure:"cache_size"`
	MaxRetries int `mapstructure:"max_retries"`
}

// SearchConfig 搜索配置
type SearchConfig struct {
	RelatedEnabled bool `mapstructure:"related_enabled"`
}

// RequestTimeout 单请求超时
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// TokenTTL token 有效期
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Timeout 连接超时
func (c MongoConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Load 加载配置文件；configPath 为空时按默认路径查找，找不到则使用默认值
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(configPath string) (*viper.Viper, error) {
	// .env 只补充未设置的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env 加载失败", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.Auth.JWTSecret = expandEnv(cfg.Auth.JWTSecret)
	cfg.Storage.Mongo.URI = expandEnv(cfg.Storage.Mongo.URI)

	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	if cfg.App.LogPath != "" {
		cfg.App.LogPath = resolvePath(cfg.App.LogPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 全部使用默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path 不能为空")
		}
	case DriverMongo:
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri 不能为空")
		}
	default:
		return fmt.Errorf("未知存储后端: %q", c.Storage.Driver)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr 不能为空")
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "dsatrack")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8787")
	v.SetDefault("server.request_timeout_sec", 15)

	// Auth
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24*30)
	v.SetDefault("auth.dev_user", "")

	// Storage
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.db_path", "./data/dsatrack.db")
	v.SetDefault("storage.mongo.uri", "")
	v.SetDefault("storage.mongo.database", "dsatrack")
	v.SetDefault("storage.mongo.timeout_sec", 10)

	// Streak
	v.SetDefault("streak.cache_size", 1024)
	v.SetDefault("streak.max_retries", 3)

	// Search
	v.SetDefault("search.related_enabled", true)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}

// resolvePath 相对路径按可执行文件目录解析
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	return filepath.Join(filepath.Dir(exe), path)
}
