package connectivity

import (
	"context"
	"sync"

	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/types"
)

// ============================================================================
// 消费辅助
// ============================================================================

// failer 支持以投递错误结束的流
type failer interface {
	Fail(err error) error
}

// Collect 对流中的每个状态调用 fn，直到流结束
//
// 返回值：
//   - fn 返回错误：订阅被解除，返回 *DeliveryError
//   - ctx 取消：订阅被解除，返回 ctx.Err()
//   - 流结束：返回 stream.Err()（正常取消为 nil）
func Collect(ctx context.Context, stream interfaces.StatusStream, fn func(types.Status) error) error {
	for {
		select {
		case <-ctx.Done():
			_ = stream.Close()
			return ctx.Err()

		case status, ok := <-stream.Out():
			if !ok {
				return stream.Err()
			}
			if err := fn(status); err != nil {
				if f, ok := stream.(failer); ok {
					return f.Fail(err)
				}
				_ = stream.Close()
				return &DeliveryError{SubscriptionID: stream.ID(), Err: err}
			}
		}
	}
}

// Latest 持有流中最新的状态
//
// 初始值为 types.DefaultStatus，适合"带初始值收集为状态"的展示场景。
type Latest struct {
	mu      sync.RWMutex
	status  types.Status
	updates uint64
	changed chan struct{}
}

// NewLatest 创建 Latest
func NewLatest() *Latest {
	return &Latest{
		status:  types.DefaultStatus,
		changed: make(chan struct{}),
	}
}

// Get 返回最新状态
func (l *Latest) Get() types.Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Updates 返回收到的状态数
func (l *Latest) Updates() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.updates
}

// Changed 返回在下一次更新时关闭的通道
func (l *Latest) Changed() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.changed
}

// Run 持续从流中收集状态，语义同 Collect
func (l *Latest) Run(ctx context.Context, stream interfaces.StatusStream) error {
	return Collect(ctx, stream, func(status types.Status) error {
		l.set(status)
		return nil
	})
}

func (l *Latest) set(status types.Status) {
	l.mu.Lock()
	l.status = status
	l.updates++
	ch := l.changed
	l.changed = make(chan struct{})
	l.mu.Unlock()

	close(ch)
}
