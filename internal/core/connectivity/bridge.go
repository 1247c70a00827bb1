package connectivity

import (
	"context"
	"sync"

	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/lib/log"
	"github.com/dep2p/go-netstatus/pkg/types"
)

var logger = log.Logger("core/connectivity")

// ============================================================================
// Bridge 实现
// ============================================================================

// Bridge 把回调式通知源桥接为去重的状态流
type Bridge struct {
	notifier interfaces.NetworkNotifier
	cfg      Config
	rec      Recorder

	mu        sync.Mutex
	sess      *session      // 当前会话（registering/active），没有时为 nil
	releasing chan struct{} // 正在进行的注销，结束后关闭
	nextGen   uint64
	closed    bool
}

var _ interfaces.ConnectivityObserver = (*Bridge)(nil)

// NewBridge 创建 Bridge
//
// rec 为 nil 时不记录指标。
func NewBridge(notifier interfaces.NetworkNotifier, cfg Config, rec Recorder) (*Bridge, error) {
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if rec == nil {
		rec = NopRecorder()
	}
	return &Bridge{
		notifier: notifier,
		cfg:      cfg.normalized(),
		rec:      rec,
	}, nil
}

// Observe 订阅状态流
func (b *Bridge) Observe(ctx context.Context) (interfaces.StatusStream, error) {
	sub, err := b.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscribe 订阅状态流，返回具体类型
//
// 第一个订阅者触发注册，并在注册返回前阻塞；同一次注册期间的其他
// 调用者等待同一个结果。上一次注销尚未完成时，先等待注销结束。
// ctx 取消后订阅自动解除。
func (b *Bridge) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return nil, ErrBridgeClosed
		}

		if rel := b.releasing; rel != nil {
			b.mu.Unlock()
			select {
			case <-rel:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		s := b.sess
		registrar := s == nil
		if registrar {
			b.nextGen++
			s = newSession(b, b.nextGen)
			b.sess = s
		}

		sub := newSubscription(b, s, b.cfg.SubscriberBuffer)
		s.subs[sub.id] = sub
		waiting := s.state == stateRegistering
		n := len(s.subs)
		b.rec.SubscribersChanged(n)
		b.mu.Unlock()

		logger.Debug("新增订阅", "sub", log.TruncateID(sub.id, 8), "gen", s.gen, "subscribers", n)

		switch {
		case registrar:
			b.register(s)
		case waiting:
			select {
			case <-s.ready:
			case <-ctx.Done():
				b.detach(sub, nil)
				sub.wait()
				return nil, ctx.Err()
			}
		}

		b.mu.Lock()
		regErr := s.err
		b.mu.Unlock()
		if regErr != nil {
			sub.wait()
			return nil, &RegistrationError{Err: regErr}
		}

		sub.bind(ctx)
		return sub, nil
	}
}

// Current 返回当前会话最近一次发出的状态
//
// 没有活跃会话或会话尚未发出状态时返回 types.DefaultStatus。
func (b *Bridge) Current() types.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s := b.sess; s != nil && s.state == stateActive && s.hasLast {
		return s.last
	}
	return types.DefaultStatus
}

// Subscribers 返回当前会话的订阅数
func (b *Bridge) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sess == nil {
		return 0
	}
	return len(b.sess.subs)
}

// Active 是否持有通知源注册
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sess != nil && b.sess.state == stateActive
}

// Close 关闭 Bridge
//
// 所有订阅以 ErrBridgeClosed 结束，持有的注册在返回前注销。可多次调用。
func (b *Bridge) Close() error {
	for {
		b.mu.Lock()
		b.closed = true

		if rel := b.releasing; rel != nil {
			b.mu.Unlock()
			<-rel
			continue
		}

		s := b.sess
		if s == nil {
			b.mu.Unlock()
			return nil
		}

		if s.state == stateRegistering {
			b.mu.Unlock()
			<-s.ready
			continue
		}

		// active
		subs := s.takeSubs()
		rel := b.beginReleaseLocked(s)
		b.rec.SubscribersChanged(0)
		b.mu.Unlock()

		for _, sub := range subs {
			sub.finish(ErrBridgeClosed)
		}
		b.release(s, rel)
		logger.Info("连通性桥接已关闭", "gen", s.gen, "subscribers", len(subs))
		return nil
	}
}

// ============================================================================
// 注册与注销
// ============================================================================

// register 向通知源注册会话回调
//
// 在调用者 goroutine 上执行，不持有锁；通知源可以在 Register 内部回调。
func (b *Bridge) register(s *session) {
	err := b.notifier.Register(s.cb)

	b.mu.Lock()
	if err != nil {
		s.err = err
		s.state = stateReleased
		s.early = nil
		if b.sess == s {
			b.sess = nil
		}
		subs := s.takeSubs()
		b.rec.RegistrationFailed()
		b.rec.SubscribersChanged(0)
		close(s.ready)
		b.mu.Unlock()

		logger.Warn("注册网络回调失败", "gen", s.gen, "waiters", len(subs), "error", err)
		regErr := &RegistrationError{Err: err}
		for _, sub := range subs {
			sub.finish(regErr)
		}
		return
	}

	s.state = stateActive
	b.rec.Registered()
	for _, status := range s.early {
		b.emitLocked(s, status)
	}
	s.early = nil
	close(s.ready)

	var (
		rel   chan struct{}
		subs  []*Subscription
		fatal = s.fatal
	)
	switch {
	case fatal != nil:
		subs = s.takeSubs()
		rel = b.beginReleaseLocked(s)
		b.rec.Fatal()
		b.rec.SubscribersChanged(0)
	case len(s.subs) == 0:
		// 注册期间所有等待者都已取消
		rel = b.beginReleaseLocked(s)
	}
	b.mu.Unlock()

	logger.Info("网络回调已注册", "gen", s.gen)

	if fatal != nil {
		logger.Error("通知源致命错误", "gen", s.gen, "error", fatal)
		ferr := &FatalNotifierError{Err: fatal}
		for _, sub := range subs {
			sub.finish(ferr)
		}
	}
	if rel != nil {
		b.release(s, rel)
	}
}

// beginReleaseLocked 将会话切换到 releasing 状态
//
// 调用者必须持有 b.mu，并在释放锁后调用 release。
func (b *Bridge) beginReleaseLocked(s *session) chan struct{} {
	s.state = stateReleasing
	if b.sess == s {
		b.sess = nil
	}
	rel := make(chan struct{})
	b.releasing = rel
	return rel
}

// release 注销会话回调，完成后唤醒等待中的 Observe
func (b *Bridge) release(s *session, rel chan struct{}) {
	if err := b.notifier.Unregister(s.cb); err != nil {
		logger.Warn("注销网络回调失败", "gen", s.gen, "error", err)
	}

	b.mu.Lock()
	s.state = stateReleased
	if b.releasing == rel {
		b.releasing = nil
	}
	b.rec.Released()
	b.mu.Unlock()

	close(rel)
	logger.Debug("网络回调已注销", "gen", s.gen)
}

// detach 从会话移除订阅
//
// 如果这是活跃会话的最后一个订阅，在返回前同步注销。
func (b *Bridge) detach(sub *Subscription, cause error) {
	b.mu.Lock()
	s := sub.sess
	if _, ok := s.subs[sub.id]; !ok {
		b.mu.Unlock()
		sub.finish(cause)
		return
	}

	delete(s.subs, sub.id)
	n := len(s.subs)
	b.rec.SubscribersChanged(n)

	var rel chan struct{}
	if n == 0 && s.state == stateActive {
		rel = b.beginReleaseLocked(s)
	}
	b.mu.Unlock()

	sub.finish(cause)
	logger.Debug("订阅已解除", "sub", log.TruncateID(sub.id, 8), "gen", s.gen, "subscribers", n)

	if rel != nil {
		b.release(s, rel)
	}
}

// ============================================================================
// 事件处理
// ============================================================================

// handle 处理通知源事件
func (b *Bridge) handle(s *session, status types.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sess != s {
		logger.Debug("忽略过期会话事件", "gen", s.gen, "status", status)
		return
	}

	switch s.state {
	case stateRegistering:
		s.early = append(s.early, status)
	case stateActive:
		b.emitLocked(s, status)
	}
}

// emitLocked 去重后扇出到所有订阅
func (b *Bridge) emitLocked(s *session, status types.Status) {
	if s.hasLast && s.last == status {
		b.rec.DuplicateSuppressed()
		return
	}
	s.last = status
	s.hasLast = true
	b.rec.Emitted(status)

	for _, sub := range s.subs {
		if dropped := sub.enqueue(status); dropped > 0 {
			b.rec.Dropped(dropped)
			sub.noteDropped(dropped)
		}
	}
}

// fatal 处理通知源致命错误
//
// 所有订阅以 FatalNotifierError 结束；注销在独立 goroutine 中进行，
// 不占用通知源的投递线程。
func (b *Bridge) fatal(s *session, err error) {
	b.mu.Lock()
	if b.sess != s {
		b.mu.Unlock()
		return
	}
	if s.state == stateRegistering {
		if s.fatal == nil {
			s.fatal = err
		}
		b.mu.Unlock()
		return
	}

	subs := s.takeSubs()
	rel := b.beginReleaseLocked(s)
	b.rec.Fatal()
	b.rec.SubscribersChanged(0)
	b.mu.Unlock()

	logger.Error("通知源致命错误", "gen", s.gen, "subscribers", len(subs), "error", err)

	ferr := &FatalNotifierError{Err: err}
	for _, sub := range subs {
		sub.finish(ferr)
	}
	go b.release(s, rel)
}
