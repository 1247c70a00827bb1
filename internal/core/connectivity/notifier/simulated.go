package notifier

import (
	"sync"
	"time"

	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/types"
)

// ============================================================================
// Simulated 可编程通知源
// ============================================================================

// RegisterHook 在 Register 提交前调用
//
// 可以直接调用 cb 的方法模拟注册期间到达的事件；返回错误则注册失败。
type RegisterHook func(cb interfaces.NetworkCallback) error

// Simulated 可编程的网络通知源
//
// 事件在调用者 goroutine 上同步投递给所有已注册的回调。
// 允许同时存在多个回调，以便检测重复注册。
type Simulated struct {
	mu sync.Mutex

	callbacks []interfaces.NetworkCallback
	failNext  []error
	hook      RegisterHook

	registrations   int
	unregistrations int
	peakLive        int
}

var _ interfaces.NetworkNotifier = (*Simulated)(nil)

// NewSimulated 创建模拟通知源
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Register 注册回调
func (s *Simulated) Register(cb interfaces.NetworkCallback) error {
	if cb == nil {
		return ErrInvalidCallback
	}

	s.mu.Lock()
	if len(s.failNext) > 0 {
		err := s.failNext[0]
		s.failNext = s.failNext[1:]
		s.mu.Unlock()
		return err
	}
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		if err := hook(cb); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
	s.registrations++
	if n := len(s.callbacks); n > s.peakLive {
		s.peakLive = n
	}
	return nil
}

// Unregister 注销回调
func (s *Simulated) Unregister(cb interfaces.NetworkCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, registered := range s.callbacks {
		if registered == cb {
			s.callbacks = append(s.callbacks[:i], s.callbacks[i+1:]...)
			s.unregistrations++
			return nil
		}
	}
	return ErrNotRegistered
}

// FailNextRegister 让接下来的一次 Register 返回 err
//
// 多次调用依次排队。
func (s *Simulated) FailNextRegister(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, err)
}

// SetRegisterHook 设置注册钩子，nil 表示清除
func (s *Simulated) SetRegisterHook(hook RegisterHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// ----------------------------------------------------------------------------
// 事件触发
// ----------------------------------------------------------------------------

// Available 触发 OnAvailable
func (s *Simulated) Available() {
	for _, cb := range s.snapshot() {
		cb.OnAvailable()
	}
}

// Losing 触发 OnLosing
func (s *Simulated) Losing(ttl time.Duration) {
	for _, cb := range s.snapshot() {
		cb.OnLosing(ttl)
	}
}

// Lost 触发 OnLost
func (s *Simulated) Lost() {
	for _, cb := range s.snapshot() {
		cb.OnLost()
	}
}

// Unavailable 触发 OnUnavailable
func (s *Simulated) Unavailable() {
	for _, cb := range s.snapshot() {
		cb.OnUnavailable()
	}
}

// Fatal 向实现了 interfaces.FatalHandler 的回调报告致命错误
func (s *Simulated) Fatal(err error) {
	for _, cb := range s.snapshot() {
		if h, ok := cb.(interfaces.FatalHandler); ok {
			h.OnFatal(err)
		}
	}
}

// Emit 按状态触发对应的回调方法
func (s *Simulated) Emit(statuses ...types.Status) {
	for _, status := range statuses {
		switch status {
		case types.StatusAvailable:
			s.Available()
		case types.StatusLosing:
			s.Losing(0)
		case types.StatusLost:
			s.Lost()
		case types.StatusUnavailable:
			s.Unavailable()
		}
	}
}

// ----------------------------------------------------------------------------
// 统计
// ----------------------------------------------------------------------------

// Registrations 成功注册次数
func (s *Simulated) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registrations
}

// Unregistrations 成功注销次数
func (s *Simulated) Unregistrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregistrations
}

// Live 当前注册的回调数
func (s *Simulated) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

// PeakLive 同时注册的回调数峰值
func (s *Simulated) PeakLive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peakLive
}

func (s *Simulated) snapshot() []interfaces.NetworkCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	cbs := make([]interfaces.NetworkCallback, len(s.callbacks))
	copy(cbs, s.callbacks)
	return cbs
}
