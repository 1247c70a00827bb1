// Package main 提供 netstatus 命令行入口
//
// 订阅本机网络连通性并逐行打印状态变化：
//
//	$ netstatus -preset server -metrics-addr 127.0.0.1:9464
//	Network Status Unavailable
//	Network Status Available
//	Network Status Losing
//	Network Status Lost
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-netstatus"
	"github.com/dep2p/go-netstatus/pkg/lib/log"
)

var logger = log.Logger("netstatus/cmd")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if flags.showVersion {
		fmt.Fprintln(stdout, netstatus.VersionInfo())
		return nil
	}

	cfg, err := buildConfig(flags)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	// Go 运行时和进程指标与连通性指标共用一个 Registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []netstatus.Option{
		netstatus.WithConfig(cfg),
		netstatus.WithRegisterer(reg),
	}
	if flags.preset != "" {
		opts = append(opts, netstatus.WithPreset(flags.preset))
	}

	obs, err := netstatus.New(opts...)
	if err != nil {
		return err
	}

	// 日志按生效配置（预设和覆盖之后）设置
	effective := obs.Config()
	closeLog, err := setupLogging(effective.Log, stderr)
	if err != nil {
		_ = obs.Close()
		return err
	}
	defer closeLog()
	defer func() { _ = obs.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("启动 netstatus", "version", netstatus.Version, "commit", netstatus.GitCommit, "buildDate", netstatus.BuildDate)
	if err := obs.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// 显示循环结束时同时停止指标服务
		defer cancel()
		return display(gctx, obs, stdout)
	})

	if addr := effective.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, addr, reg)
		})
	}

	err = g.Wait()

	var regErr *netstatus.RegistrationError
	if errors.As(err, &regErr) {
		fmt.Fprintln(stderr, "无法注册网络状态回调，请检查是否有读取网络接口的权限")
	}
	return err
}

// display 打印初始状态和之后的每一次状态变化
//
// ctx 取消时解除订阅并返回 nil；订阅失败或状态流异常结束时返回错误。
func display(ctx context.Context, obs *netstatus.Observer, w io.Writer) error {
	printStatus(w, netstatus.StatusUnavailable)

	err := obs.Collect(ctx, func(s netstatus.Status) error {
		printStatus(w, s)
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func printStatus(w io.Writer, s netstatus.Status) {
	fmt.Fprintf(w, "Network Status %s\n", s)
}
