package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "notifier": {"poll_interval": "5s", "loss_grace": "0s"},
//	  "log": {"level": "debug"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载并验证配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// 预设名称
const (
	PresetMobile  = "mobile"
	PresetDesktop = "desktop"
	PresetServer  = "server"
	PresetMinimal = "minimal"
)

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "mobile": 省电，较长轮询间隔和丢失宽限期
//   - "desktop": 默认值
//   - "server": 快速检测，宽限期短
//   - "minimal": 仅轮询，不使用系统路由事件，不收集指标
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case PresetMobile:
		applyMobilePreset(cfg)
	case PresetDesktop:
		cfg.Notifier = DefaultNotifierConfig()
	case PresetServer:
		applyServerPreset(cfg)
	case PresetMinimal:
		applyMinimalPreset(cfg)
	case "":
		// 空预设，不做任何操作
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}

// applyMobilePreset 移动端：网络切换频繁，宽限期更长以吸收抖动
func applyMobilePreset(cfg *Config) {
	cfg.Notifier.PollInterval = Duration(5 * time.Second)
	cfg.Notifier.FastPollInterval = Duration(1 * time.Second)
	cfg.Notifier.FastPollDuration = Duration(15 * time.Second)
	cfg.Notifier.LossGrace = Duration(5 * time.Second)
	cfg.Notifier.EnableEvents = true
	cfg.Connectivity.SubscriberBuffer = 8
}

// applyServerPreset 服务器：接口稳定，快速上报丢失
func applyServerPreset(cfg *Config) {
	cfg.Notifier.PollInterval = Duration(1 * time.Second)
	cfg.Notifier.FastPollInterval = Duration(250 * time.Millisecond)
	cfg.Notifier.FastPollDuration = Duration(5 * time.Second)
	cfg.Notifier.LossGrace = Duration(1 * time.Second)
	cfg.Notifier.EnableEvents = true
}

// applyMinimalPreset 最小配置
func applyMinimalPreset(cfg *Config) {
	cfg.Notifier.PollInterval = Duration(5 * time.Second)
	cfg.Notifier.FastPollInterval = Duration(5 * time.Second)
	cfg.Notifier.FastPollDuration = 0
	cfg.Notifier.LossGrace = 0
	cfg.Notifier.EnableEvents = false
	cfg.Connectivity.SubscriberBuffer = 1
	cfg.Metrics.Enabled = false
}
