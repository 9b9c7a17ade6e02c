package config

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watcher 监听配置文件变化，目前只热更新日志级别
type Watcher struct {
	v        *viper.Viper
	mu       sync.Mutex
	current  *Config
	onChange []func(*Config)
}

// Watch 加载配置并开始监听；配置文件不存在时不监听
func Watch(configPath string) (*Watcher, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	w := &Watcher{v: v, current: cfg}
	w.OnChange(func(c *Config) { SetLogLevel(c.App.LogLevel) })

	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(w.handle)
		v.WatchConfig()
	}
	return w, nil
}

// Config 当前配置快照
func (w *Watcher) Config() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// OnChange 注册配置变更回调
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

func (w *Watcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	cfg, err := decode(w.v)
	if err != nil {
		slog.Warn("配置热更新失败，保留旧配置", "path", e.Name, "error", err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	fns := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()

	for _, fn := range fns {
		fn(cfg)
	}
	slog.Info("配置已重新加载", "path", e.Name, "log_level", cfg.App.LogLevel)
}
