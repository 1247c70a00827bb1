package config

import "errors"

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 快速轮询间隔大于正常间隔 -> 交换值
//   - 订阅缓冲区小于 1 -> 使用默认值
//   - 连续失败阈值小于 1 -> 使用默认值
//   - 日志级别/格式为空 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Notifier.FastPollInterval > c.Notifier.PollInterval {
		c.Notifier.FastPollInterval, c.Notifier.PollInterval = c.Notifier.PollInterval, c.Notifier.FastPollInterval
	}
	if c.Connectivity.SubscriberBuffer < 1 {
		c.Connectivity.SubscriberBuffer = DefaultConnectivityConfig().SubscriberBuffer
	}
	if c.Notifier.MaxReadFailures < 1 {
		c.Notifier.MaxReadFailures = DefaultNotifierConfig().MaxReadFailures
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig().Level
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig().Format
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
