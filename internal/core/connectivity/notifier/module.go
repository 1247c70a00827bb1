package notifier

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params System 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	System   *System
	Notifier interfaces.NetworkNotifier
}

// Module 返回 Fx 模块
//
// 提供基于本机网络接口的 interfaces.NetworkNotifier。
func Module() fx.Option {
	return fx.Module("notifier",
		fx.Provide(ProvideSystem),
	)
}

// ProvideSystem 提供系统通知源
func ProvideSystem(p Params) Result {
	sys := NewSystem(SystemConfigFromUnified(p.UnifiedCfg))
	return Result{
		System:   sys,
		Notifier: sys,
	}
}
