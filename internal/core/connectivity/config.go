package connectivity

import (
	"github.com/dep2p/go-netstatus/config"
)

// Config 桥接配置
type Config struct {
	// SubscriberBuffer 每个订阅者的待投递队列上限
	SubscriberBuffer int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		SubscriberBuffer: config.DefaultConnectivityConfig().SubscriberBuffer,
	}
}

// ConfigFromUnified 从统一配置创建桥接配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		SubscriberBuffer: cfg.Connectivity.SubscriberBuffer,
	}
}

func (c Config) normalized() Config {
	if c.SubscriberBuffer < 1 {
		c.SubscriberBuffer = DefaultConfig().SubscriberBuffer
	}
	return c
}
