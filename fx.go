package netstatus

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/internal/core/connectivity"
	"github.com/dep2p/go-netstatus/internal/core/connectivity/notifier"
	"github.com/dep2p/go-netstatus/internal/core/metrics"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. 通知源：用户提供的或系统通知源
//  3. 指标（条件加载）
//  4. 连通性桥接
//  5. 用户自定义 Fx 选项
func buildFxApp(cfg *config.Config, o *options, obs *Observer) *fx.App {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 通知源
	// ════════════════════════════════════════════════════════════════════════
	if o.notifier != nil {
		n := o.notifier
		modules = append(modules, fx.Provide(func() interfaces.NetworkNotifier { return n }))
	} else {
		modules = append(modules, notifier.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 指标（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.Metrics.Enabled {
		if o.registerer != nil {
			reg := o.registerer
			modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
		}
		modules = append(modules, metrics.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 连通性桥接
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		connectivity.Module(),
		fx.Populate(&obs.bridge),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户自定义 Fx 选项
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.fxOptions...)

	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...)
}
