package netstatus

import (
	"github.com/dep2p/go-netstatus/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置常量
// ════════════════════════════════════════════════════════════════════════════

// 预设名称常量
const (
	// PresetMobile 移动端：宽限期更长，吸收频繁的网络切换
	PresetMobile = config.PresetMobile

	// PresetDesktop 桌面端：默认值
	PresetDesktop = config.PresetDesktop

	// PresetServer 服务器：快速检测，短宽限期
	PresetServer = config.PresetServer

	// PresetMinimal 最小：仅轮询，不收集指标
	PresetMinimal = config.PresetMinimal
)

// PresetConfig 返回应用了预设的配置
//
// 示例：
//
//	cfg, _ := netstatus.PresetConfig(netstatus.PresetServer)
//	cfg.Notifier.LossGrace = config.Duration(0)
//	obs, _ := netstatus.New(netstatus.WithConfig(cfg))
func PresetConfig(name string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := config.ApplyPreset(cfg, name); err != nil {
		return nil, err
	}
	return cfg, nil
}
