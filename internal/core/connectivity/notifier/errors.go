package notifier

import "errors"

var (
	// ErrNotifierBusy 通知源已有注册的回调
	ErrNotifierBusy = errors.New("network notifier already has a registered callback")

	// ErrNotRegistered 回调未注册
	ErrNotRegistered = errors.New("network callback not registered")

	// ErrInvalidCallback 回调为空
	ErrInvalidCallback = errors.New("network callback is nil")

	// ErrEventsUnsupported 当前平台不支持系统路由事件
	ErrEventsUnsupported = errors.New("network events not supported on this platform")
)
