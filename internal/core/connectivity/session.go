package connectivity

import (
	"github.com/dep2p/go-netstatus/pkg/types"
)

// sessionState 会话状态
type sessionState int

const (
	// stateRegistering 正在向通知源注册
	stateRegistering sessionState = iota
	// stateActive 注册成功，正在投递事件
	stateActive
	// stateReleasing 正在注销
	stateReleasing
	// stateReleased 已注销或注册失败
	stateReleased
)

func (s sessionState) String() string {
	switch s {
	case stateRegistering:
		return "registering"
	case stateActive:
		return "active"
	case stateReleasing:
		return "releasing"
	case stateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// session 一次向通知源的注册
//
// 除 gen、cb、ready 外的字段都由 Bridge.mu 保护。
type session struct {
	gen   uint64
	cb    *callback
	ready chan struct{} // 注册结束（成功或失败）后关闭

	state sessionState
	err   error // 注册失败原因
	fatal error // 注册期间收到的致命错误

	subs map[string]*Subscription

	// 去重状态：只在会话内有效，重新注册后重置
	last    types.Status
	hasLast bool

	// 注册期间到达的事件
	early []types.Status
}

func newSession(b *Bridge, gen uint64) *session {
	s := &session{
		gen:   gen,
		ready: make(chan struct{}),
		state: stateRegistering,
		subs:  make(map[string]*Subscription),
	}
	s.cb = &callback{bridge: b, sess: s}
	return s
}

// takeSubs 取出并清空订阅集合
func (s *session) takeSubs() []*Subscription {
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[string]*Subscription)
	return subs
}
