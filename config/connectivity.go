package config

import "fmt"

// ConnectivityConfig 状态流桥接配置
type ConnectivityConfig struct {
	// SubscriberBuffer 每个订阅者的待投递队列上限
	// 队列满时丢弃最旧的待投递状态（只有当前状态有意义）
	// 默认值: 16
	SubscriberBuffer int `json:"subscriber_buffer"`
}

// DefaultConnectivityConfig 返回默认的桥接配置
func DefaultConnectivityConfig() ConnectivityConfig {
	return ConnectivityConfig{
		SubscriberBuffer: 16,
	}
}

// Validate 验证桥接配置
func (c *ConnectivityConfig) Validate() error {
	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("connectivity: subscriber_buffer must be >= 1, got %d", c.SubscriberBuffer)
	}
	return nil
}
