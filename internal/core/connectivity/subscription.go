package connectivity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/lib/log"
	"github.com/dep2p/go-netstatus/pkg/types"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// slowConsumerWarnEvery 每丢弃多少个状态输出一次慢消费者告警
const slowConsumerWarnEvery = 100

// Subscription 单个消费者的状态流
//
// 状态先进入有界队列，由独立的 pump goroutine 投递到无缓冲的 Out 通道。
type Subscription struct {
	id     string
	bridge *Bridge
	sess   *session
	limit  int

	out    chan types.Status
	done   chan struct{}
	exited chan struct{}
	wake   chan struct{}

	mu       sync.Mutex
	queue    []types.Status
	prev     types.Status // pump 最近取出的状态
	hasPrev  bool
	dropped  uint64
	err      error
	finished bool
	stop     func() bool
}

var _ interfaces.StatusStream = (*Subscription)(nil)

func newSubscription(b *Bridge, s *session, limit int) *Subscription {
	sub := &Subscription{
		id:     uuid.NewString(),
		bridge: b,
		sess:   s,
		limit:  limit,
		out:    make(chan types.Status),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
	go sub.pump()
	return sub
}

// ID 返回订阅 ID
func (s *Subscription) ID() string {
	return s.id
}

// Out 返回状态通道
func (s *Subscription) Out() <-chan types.Status {
	return s.out
}

// Done 订阅结束后关闭
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err 返回终止原因
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Dropped 返回因队列溢出丢弃的状态数
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close 取消订阅
//
// 可以多次调用。若这是会话中最后一个订阅，返回前底层注册已经注销。
func (s *Subscription) Close() error {
	s.bridge.detach(s, nil)
	s.wait()
	return nil
}

// Fail 因消费者处理失败解除订阅
//
// 返回包装后的 *DeliveryError，订阅的 Err 也返回它。
func (s *Subscription) Fail(err error) error {
	derr := &DeliveryError{SubscriptionID: s.id, Err: err}
	s.bridge.rec.DeliveryFailed()
	logger.Warn("订阅者处理失败", "sub", log.TruncateID(s.id, 8), "error", err)
	s.bridge.detach(s, derr)
	s.wait()
	return derr
}

// bind ctx 取消时自动解除订阅
func (s *Subscription) bind(ctx context.Context) {
	if ctx.Done() == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.stop = context.AfterFunc(ctx, func() {
		s.bridge.detach(s, nil)
	})
}

// enqueue 追加状态，返回因溢出丢弃的数量
//
// 调用者持有 Bridge.mu。队列保持规范化：相邻元素不同，队首与 prev 不同。
func (s *Subscription) enqueue(status types.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return 0
	}

	if n := len(s.queue); n > 0 {
		if s.queue[n-1] == status {
			return 0
		}
	} else if s.hasPrev && s.prev == status {
		return 0
	}

	dropped := 0
	if len(s.queue) >= s.limit {
		s.queue = s.queue[1:]
		dropped++
		if len(s.queue) > 0 && s.hasPrev && s.queue[0] == s.prev {
			s.queue = s.queue[1:]
			dropped++
		}
	}

	if n := len(s.queue); (n > 0 && s.queue[n-1] == status) || (n == 0 && s.hasPrev && s.prev == status) {
		// 丢弃之后新状态与待投递的最后一个状态相同
		return dropped
	}

	s.queue = append(s.queue, status)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return dropped
}

// noteDropped 累计丢弃数，周期性输出慢消费者告警
func (s *Subscription) noteDropped(n int) {
	s.mu.Lock()
	before := s.dropped
	s.dropped += uint64(n)
	after := s.dropped
	s.mu.Unlock()

	if before/slowConsumerWarnEvery != after/slowConsumerWarnEvery {
		logger.Warn("慢消费者，状态被丢弃", "sub", log.TruncateID(s.id, 8), "dropped", after)
	}
}

// finish 结束订阅，记录终止原因。只有第一次调用生效。
func (s *Subscription) finish(cause error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.err = cause
	s.queue = nil
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	close(s.done)
}

// wait 等待 pump 退出（Out 已关闭）
func (s *Subscription) wait() {
	<-s.exited
}

// next 取出下一个待投递状态，订阅结束时返回 false
func (s *Subscription) next() (types.Status, bool) {
	for {
		s.mu.Lock()
		if s.finished {
			s.mu.Unlock()
			return types.DefaultStatus, false
		}
		if len(s.queue) > 0 {
			status := s.queue[0]
			s.queue = s.queue[1:]
			s.prev = status
			s.hasPrev = true
			s.mu.Unlock()
			return status, true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.done:
			return types.DefaultStatus, false
		}
	}
}

// pump 把队列中的状态投递到 Out
func (s *Subscription) pump() {
	defer close(s.exited)
	defer close(s.out)

	for {
		status, ok := s.next()
		if !ok {
			return
		}
		select {
		case s.out <- status:
		case <-s.done:
			return
		}
	}
}
