package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "config", "config.yaml"), nil
}

// WriteFile 以 yaml 写出配置，键名与 Load 读取的一致
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
			"log_path":  cfg.App.LogPath,
		},
		"server": map[string]any{
			"listen_addr":         cfg.Server.ListenAddr,
			"request_timeout_sec": cfg.Server.RequestTimeoutSec,
		},
		"auth": map[string]any{
			"jwt_secret":      cfg.Auth.JWTSecret,
			"token_ttl_hours": cfg.Auth.TokenTTLHours,
			"dev_user":        cfg.Auth.DevUser,
		},
		"storage": map[string]any{
			"driver":  cfg.Storage.Driver,
			"db_path": cfg.Storage.DBPath,
			"mongo": map[string]any{
				"uri":         cfg.Storage.Mongo.URI,
				"database":    cfg.Storage.Mongo.Database,
				"timeout_sec": cfg.Storage.Mongo.TimeoutSec,
			},
		},
		"streak": map[string]any{
			"cache_size":  cfg.Streak.CacheSize,
			"max_retries": cfg.Streak.MaxRetries,
		},
		"search": map[string]any{
			"related_enabled": cfg.Search.RelatedEnabled,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	// 可能包含 jwt_secret，仅属主可读
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
