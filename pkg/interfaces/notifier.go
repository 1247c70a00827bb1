// Package interfaces 定义 netstatus 公共接口
//
// 本文件定义底层网络变化通知源接口，对应 internal/core/connectivity/notifier/ 实现。
package interfaces

import "time"

// ════════════════════════════════════════════════════════════════════════════
// NetworkNotifier 接口（系统网络变化通知）
// ════════════════════════════════════════════════════════════════════════════

// NetworkNotifier 回调式的网络变化通知源
//
// 事件在通知源自己的 goroutine 上异步投递，可能重复，
// 除"按操作系统观察到的顺序"外不保证顺序。
type NetworkNotifier interface {
	// Register 注册回调
	//
	// 失败（权限不足、子系统不可用等）时返回错误，此时不会投递任何事件。
	Register(cb NetworkCallback) error

	// Unregister 注销回调
	//
	// 返回后不再向该回调投递事件。
	Unregister(cb NetworkCallback) error
}

// NetworkCallback 网络变化回调
type NetworkCallback interface {
	// OnAvailable 网络可用
	OnAvailable()

	// OnLosing 网络即将丢失，ttl 为预计剩余存活时间
	OnLosing(ttl time.Duration)

	// OnLost 网络已丢失
	OnLost()

	// OnUnavailable 没有可用网络
	OnUnavailable()
}

// FatalHandler 可选接口：接收通知源不可恢复的内部错误
//
// 通知源应通过类型断言检查回调是否实现了该接口。
// 调用 OnFatal 之后通知源不再投递任何事件。
type FatalHandler interface {
	OnFatal(err error)
}

// ════════════════════════════════════════════════════════════════════════════
// 网络状态快照
// ════════════════════════════════════════════════════════════════════════════

// NetworkState 网络状态
type NetworkState struct {
	// Interfaces 活跃的网络接口
	Interfaces []NetworkInterface

	// PreferredInterface 首选接口
	PreferredInterface string

	// IsOnline 是否在线
	IsOnline bool
}

// NetworkInterface 网络接口信息
type NetworkInterface struct {
	// Name 接口名称
	Name string

	// Addrs 地址列表
	Addrs []string

	// IsUp 是否启用
	IsUp bool

	// IsLoopback 是否为回环接口
	IsLoopback bool
}
