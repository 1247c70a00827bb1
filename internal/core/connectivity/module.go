package connectivity

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Bridge 依赖参数
type Params struct {
	fx.In

	Notifier   interfaces.NetworkNotifier
	UnifiedCfg *config.Config `optional:"true"`
	Recorder   Recorder       `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bridge   *Bridge
	Observer interfaces.ConnectivityObserver
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("connectivity",
		fx.Provide(ProvideBridge),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideBridge 提供 Bridge 实例
func ProvideBridge(p Params) (Result, error) {
	bridge, err := NewBridge(p.Notifier, ConfigFromUnified(p.UnifiedCfg), p.Recorder)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Bridge:   bridge,
		Observer: bridge,
	}, nil
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC     fx.Lifecycle
	Bridge *Bridge
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Bridge.Close()
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "connectivity"
	// Description 模块描述
	Description = "连通性状态流桥接模块，将回调式网络通知转换为去重的多订阅者状态流"
)
