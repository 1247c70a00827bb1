package netstatus

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（nil 时使用默认配置）
	config *config.Config

	// 预设名称
	preset string

	// 通知源（nil 时使用系统通知源）
	notifier interfaces.NetworkNotifier

	// 指标注册表（nil 时使用独立 Registry）
	registerer prometheus.Registerer

	// 单项覆盖，在预设之后应用
	subscriberBuffer *int
	pollInterval     *time.Duration
	lossGrace        *time.Duration

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// resolveConfig 合成最终配置：基础配置 -> 预设 -> 单项覆盖
func (o *options) resolveConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if o.config != nil {
		cfg = o.config.Clone()
	}

	if err := config.ApplyPreset(cfg, o.preset); err != nil {
		return nil, err
	}

	if o.subscriberBuffer != nil {
		cfg.Connectivity.SubscriberBuffer = *o.subscriberBuffer
	}
	if o.pollInterval != nil {
		cfg.Notifier.PollInterval = config.Duration(*o.pollInterval)
		if cfg.Notifier.FastPollInterval > cfg.Notifier.PollInterval {
			cfg.Notifier.FastPollInterval = cfg.Notifier.PollInterval
		}
	}
	if o.lossGrace != nil {
		cfg.Notifier.LossGrace = config.Duration(*o.lossGrace)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置作为基础
//
// 配置会被复制，之后修改 cfg 不影响 Observer。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设配置
//
// 可选值：PresetMobile、PresetDesktop、PresetServer、PresetMinimal。
func WithPreset(name string) Option {
	return func(o *options) error {
		o.preset = name
		return nil
	}
}

// WithNotifier 使用自定义的网络通知源
//
// 默认使用观察本机网络接口的系统通知源。
func WithNotifier(n NetworkNotifier) Option {
	return func(o *options) error {
		if n == nil {
			return errors.New("notifier is nil")
		}
		o.notifier = n
		return nil
	}
}

// WithRegisterer 把指标注册到指定的 Prometheus Registerer
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithSubscriberBuffer 设置每个订阅者的待投递队列上限
func WithSubscriberBuffer(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("subscriber buffer must be >= 1, got %d", n)
		}
		o.subscriberBuffer = &n
		return nil
	}
}

// WithPollInterval 设置系统通知源的轮询间隔
func WithPollInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", d)
		}
		o.pollInterval = &d
		return nil
	}
}

// WithLossGrace 设置网络消失后的宽限期，0 表示直接通知 Lost
func WithLossGrace(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("loss grace must not be negative, got %s", d)
		}
		o.lossGrace = &d
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
