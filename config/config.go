// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（mobile/desktop/server/minimal）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Notifier.LossGrace = config.Duration(5 * time.Second)
//
//	// 应用预设
//	_ = config.ApplyPreset(cfg, "mobile")
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("netstatus.json")
package config

import "go.uber.org/multierr"

// Config 是 netstatus 的完整配置结构
//
// 配置按照功能模块组织：
//   - Connectivity: 状态流桥接（订阅缓冲）
//   - Notifier: 系统网络变化通知源（轮询、丢失宽限期）
//   - Log: 日志
//   - Metrics: Prometheus 指标
type Config struct {
	// Connectivity 状态流桥接配置
	Connectivity ConnectivityConfig `json:"connectivity"`

	// Notifier 通知源配置
	Notifier NotifierConfig `json:"notifier"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置（等价于 desktop 预设）
func NewConfig() *Config {
	return &Config{
		Connectivity: DefaultConnectivityConfig(),
		Notifier:     DefaultNotifierConfig(),
		Log:          DefaultLogConfig(),
		Metrics:      DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回的错误包含全部问题（multierr 聚合）。
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Connectivity.Validate(),
		c.Notifier.Validate(),
		c.Log.Validate(),
		c.Metrics.Validate(),
	)
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
