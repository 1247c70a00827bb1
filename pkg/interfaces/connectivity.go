// Package interfaces 定义 netstatus 公共接口
//
// 本文件定义连通性观察者接口，对应 internal/core/connectivity/ 实现。
package interfaces

import (
	"context"

	"github.com/dep2p/go-netstatus/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// ConnectivityObserver 接口
// ════════════════════════════════════════════════════════════════════════════

// ConnectivityObserver 将底层网络通知转换为去重的状态流
//
// 每次 Observe 返回一个独立的 StatusStream；多个流共享同一个底层注册。
type ConnectivityObserver interface {
	// Observe 订阅状态流
	//
	// 注册失败时返回错误（不会以 Unavailable 状态的形式静默出现）。
	// ctx 取消时订阅自动解除。
	Observe(ctx context.Context) (StatusStream, error)

	// Current 返回当前会话最近一次发出的状态
	//
	// 没有活跃会话或尚未发出任何状态时返回 types.DefaultStatus。
	Current() types.Status
}

// StatusStream 单个消费者的状态流
type StatusStream interface {
	// ID 订阅唯一标识
	ID() string

	// Out 返回状态通道
	//
	// 通道在订阅结束时关闭，之后可通过 Err 获取终止原因。
	// 通道中不会出现两个连续相同的状态。
	Out() <-chan types.Status

	// Done 订阅解除后关闭
	Done() <-chan struct{}

	// Err 返回终止原因
	//
	// 正常取消返回 nil；底层通知源致命错误返回 FatalNotifierError。
	Err() error

	// Close 解除订阅
	//
	// 可多次调用。若这是会话中最后一个订阅，返回前底层注册已经释放。
	Close() error
}
