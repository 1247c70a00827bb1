package config

import (
	"fmt"
	"net"
)

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enabled 是否启用指标收集
	// 默认值: true
	Enabled bool `json:"enabled"`

	// ListenAddr 指标 HTTP 服务监听地址（仅命令行使用），为空时不启动
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: true,
	}
}

// Validate 验证指标配置
func (c *MetricsConfig) Validate() error {
	if c.ListenAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("metrics: invalid listen_addr %q: %w", c.ListenAddr, err)
	}
	return nil
}
