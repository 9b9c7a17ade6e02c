package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/dsatrack/internal/bootstrap"
	"github.com/yuqie6/dsatrack/internal/httpapi"
	"github.com/yuqie6/dsatrack/internal/pkg/buildinfo"
	"github.com/yuqie6/dsatrack/internal/pkg/config"
)

func main() {
	var cfgFile string
	var listen string
	var initConfig bool

	rootCmd := &cobra.Command{
		Use:     "dsatrack-server",
		Short:   "刷题记录 HTTP 服务",
		Version: buildinfo.String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				return writeDefaultConfig(cfgFile)
			}
			return run(cfgFile, listen)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.Flags().StringVar(&listen, "listen", "", "覆盖 server.listen_addr")
	rootCmd.Flags().BoolVar(&initConfig, "init-config", false, "写出默认配置后退出")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func writeDefaultConfig(path string) error {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		return errors.New("配置文件已存在: " + path)
	}
	if err := config.WriteFile(path, config.Default()); err != nil {
		return err
	}
	slog.Info("已写出默认配置", "path", path)
	return nil
}

func run(cfgPath, listen string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, err := bootstrap.NewCore(ctx, cfgPath)
	if err != nil {
		slog.Error("初始化失败", "error", err)
		return err
	}
	defer core.Close()

	// 日志级别热更新
	if _, err := config.Watch(cfgPath); err != nil {
		slog.Warn("配置监听未启用", "error", err)
	}

	if core.Cfg.Auth.JWTSecret == "" && core.Cfg.Auth.DevUser == "" {
		slog.Warn("未配置 jwt_secret 与 dev_user，所有 /api 请求都会被拒绝")
	}

	addr := core.Cfg.Server.ListenAddr
	if listen != "" {
		addr = listen
	}
	srv, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: addr})
	if err != nil {
		slog.Error("启动 HTTP 失败", "error", err)
		return err
	}
	slog.Info("dsatrack 已启动", "version", buildinfo.String(), "base_url", srv.BaseURL())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("收到系统退出信号，正在关闭...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP 关闭超时", "error", err)
	}
	slog.Info("dsatrack 已退出")
	return nil
}
