package netstatus

import (
	"errors"

	"github.com/dep2p/go-netstatus/internal/core/connectivity"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// Observer 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted Observer 未启动
	ErrNotStarted = errors.New("observer not started")

	// ErrAlreadyStarted Observer 已启动
	ErrAlreadyStarted = errors.New("observer already started")

	// ErrObserverClosed Observer 已关闭
	ErrObserverClosed = errors.New("observer closed")

	// ────────────────────────────────────────────────────────────────────────
	// 状态流错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrBridgeClosed 状态流因 Observer 关闭而结束
	ErrBridgeClosed = connectivity.ErrBridgeClosed
)

// RegistrationError 向系统注册网络回调失败，由 Observe 返回
type RegistrationError = connectivity.RegistrationError

// FatalNotifierError 系统通知源不可恢复的错误，由 StatusStream.Err 返回
type FatalNotifierError = connectivity.FatalNotifierError

// DeliveryError 订阅者处理状态失败，由 Collect 返回
type DeliveryError = connectivity.DeliveryError
