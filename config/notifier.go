package config

import (
	"fmt"
	"time"
)

// NotifierConfig 系统网络变化通知源配置
//
// 通知源轮询网络接口状态；检测到变化后在 FastPollDuration 内
// 切换为 FastPollInterval 快速轮询。Linux 上还可以通过 netlink
// 路由事件立即唤醒检查。
type NotifierConfig struct {
	// PollInterval 正常轮询间隔
	// 默认值: 2s
	PollInterval Duration `json:"poll_interval"`

	// FastPollInterval 检测到变化后的快速轮询间隔
	// 默认值: 500ms
	FastPollInterval Duration `json:"fast_poll_interval"`

	// FastPollDuration 快速轮询持续时间
	// 默认值: 10s
	FastPollDuration Duration `json:"fast_poll_duration"`

	// LossGrace 网络消失后的宽限期
	// 先通知 Losing（ttl = LossGrace），宽限期结束仍离线再通知 Lost。
	// 为 0 时直接通知 Lost。
	// 默认值: 3s
	LossGrace Duration `json:"loss_grace"`

	// MaxReadFailures 连续读取网络状态失败多少次视为致命错误
	// 默认值: 5
	MaxReadFailures int `json:"max_read_failures"`

	// EnableEvents 是否使用系统路由事件（Linux netlink）加速检测
	// 默认值: true
	EnableEvents bool `json:"enable_events"`
}

// DefaultNotifierConfig 返回默认的通知源配置
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		PollInterval:     Duration(2 * time.Second),
		FastPollInterval: Duration(500 * time.Millisecond),
		FastPollDuration: Duration(10 * time.Second),
		LossGrace:        Duration(3 * time.Second),
		MaxReadFailures:  5,
		EnableEvents:     true,
	}
}

// Validate 验证通知源配置
func (c *NotifierConfig) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("notifier: poll_interval must be positive")
	}
	if c.FastPollInterval <= 0 {
		return fmt.Errorf("notifier: fast_poll_interval must be positive")
	}
	if c.FastPollInterval > c.PollInterval {
		return fmt.Errorf("notifier: fast_poll_interval (%s) must not exceed poll_interval (%s)",
			c.FastPollInterval, c.PollInterval)
	}
	if c.FastPollDuration < 0 {
		return fmt.Errorf("notifier: fast_poll_duration must not be negative")
	}
	if c.LossGrace < 0 {
		return fmt.Errorf("notifier: loss_grace must not be negative")
	}
	if c.MaxReadFailures < 1 {
		return fmt.Errorf("notifier: max_read_failures must be >= 1")
	}
	return nil
}
