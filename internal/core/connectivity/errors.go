package connectivity

import (
	"errors"
	"fmt"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrBridgeClosed Bridge 已关闭
	ErrBridgeClosed = errors.New("connectivity bridge closed")

	// ErrNilNotifier 通知源为空
	ErrNilNotifier = errors.New("network notifier is nil")
)

// RegistrationError 向通知源注册回调失败
//
// 同一次注册尝试上等待的所有 Observe 调用收到同一个底层错误。
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register network callback: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// FatalNotifierError 通知源报告了不可恢复的内部错误
//
// 会话中所有订阅都以该错误结束。
type FatalNotifierError struct {
	Err error
}

func (e *FatalNotifierError) Error() string {
	return fmt.Sprintf("network notifier failed: %v", e.Err)
}

func (e *FatalNotifierError) Unwrap() error {
	return e.Err
}

// DeliveryError 单个订阅者处理状态失败
//
// 只影响出错的订阅，其他订阅者不受影响。
type DeliveryError struct {
	SubscriptionID string
	Err            error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver status to subscription %s: %v", e.SubscriptionID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
