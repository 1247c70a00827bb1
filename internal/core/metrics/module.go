package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/internal/core/connectivity"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled: true,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled: cfg.Metrics.Enabled,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config       `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Recorder connectivity.Recorder
}

// Module 返回 metrics 的 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideRecorder),
	)
}

// ProvideRecorder 提供 connectivity.Recorder
//
// 指标被禁用时返回 NopRecorder；没有注入 Registerer 时使用独立的 Registry。
func ProvideRecorder(p Params) Result {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return Result{Recorder: connectivity.NopRecorder()}
	}

	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return Result{Recorder: NewConnectivityMetrics(reg)}
}
