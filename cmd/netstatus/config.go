package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/pkg/lib/log"
)

// ============================================================================
//                              命令行参数
// ============================================================================

// 环境变量（NETSTATUS_ 前缀）
const (
	envPreset      = "NETSTATUS_PRESET"
	envMetricsAddr = "NETSTATUS_METRICS_ADDR"
)

// cliFlags 命令行参数
type cliFlags struct {
	configFile  string
	preset      string
	logLevel    string
	logFormat   string
	metricsAddr string
	showVersion bool

	// set 记录显式设置过的参数
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("netstatus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configFile, "config", "", "配置文件路径（JSON）")
	fs.StringVar(&f.preset, "preset", "", "预设配置 (mobile/desktop/server/minimal)")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	fs.StringVar(&f.logFormat, "log-format", "", "日志格式 (text/json)")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Prometheus 指标监听地址，例如 127.0.0.1:9464")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// buildConfig 构建配置
//
// 优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（NETSTATUS_* 前缀）
//  3. 配置文件
//  4. 默认值
//
// 预设在 netstatus.New 中应用，位于配置文件之后。
func buildConfig(f *cliFlags) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg, f)

	if f.set["log-level"] {
		cfg.Log.Level = f.logLevel
	}
	if f.set["log-format"] {
		cfg.Log.Format = f.logFormat
	}
	if f.set["metrics-addr"] {
		cfg.Metrics.ListenAddr = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖
//
// 支持的环境变量：
//   - NETSTATUS_PRESET: 预设名称（-preset 未设置时生效）
//   - NETSTATUS_LOG_LEVEL / NETSTATUS_LOG_FORMAT: 日志
//   - NETSTATUS_METRICS_ADDR: 指标监听地址
func applyEnvOverrides(cfg *config.Config, f *cliFlags) {
	if v := os.Getenv(envPreset); v != "" && !f.set["preset"] {
		f.preset = v
	}
	if v := os.Getenv(log.EnvLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(log.EnvFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(envMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
}

// ============================================================================
//                              日志与指标
// ============================================================================

// setupLogging 设置全局日志，返回关闭日志文件的函数
func setupLogging(lc config.LogConfig, stderr io.Writer) (func(), error) {
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	format, err := log.ParseFormat(lc.Format)
	if err != nil {
		return nil, err
	}

	if lc.File == "" {
		log.Setup(level, format, stderr)
		return func() {}, nil
	}

	//nolint:gosec // G304: 用户指定的日志文件路径是预期行为
	file, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.Setup(level, format, file)
	return func() { _ = file.Close() }, nil
}

// serveMetrics 在 addr 上提供 /metrics，ctx 取消时关闭
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("指标服务已启动", "addr", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("指标服务失败: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
