package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netstatus/internal/core/connectivity/notifier"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/types"
)

const (
	recvTimeout = 2 * time.Second
	quietPeriod = 50 * time.Millisecond
)

// newTestBridge 创建基于模拟通知源的 Bridge
func newTestBridge(t *testing.T, buffer int) (*Bridge, *notifier.Simulated) {
	t.Helper()

	sim := notifier.NewSimulated()
	b, err := NewBridge(sim, Config{SubscriberBuffer: buffer}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, sim
}

// subscribe 订阅并在测试结束时关闭
func subscribe(t *testing.T, b *Bridge) *Subscription {
	t.Helper()

	sub, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	return sub
}

// recvN 接收 n 个状态
func recvN(t *testing.T, stream interfaces.StatusStream, n int) []types.Status {
	t.Helper()

	got := make([]types.Status, 0, n)
	for len(got) < n {
		select {
		case status, ok := <-stream.Out():
			require.True(t, ok, "stream closed after %v", got)
			got = append(got, status)
		case <-time.After(recvTimeout):
			t.Fatalf("timeout waiting for status, got %v", got)
		}
	}
	return got
}

// drain 接收状态直到安静期内没有新状态
func drain(stream interfaces.StatusStream) []types.Status {
	var got []types.Status
	for {
		select {
		case status, ok := <-stream.Out():
			if !ok {
				return got
			}
			got = append(got, status)
		case <-time.After(quietPeriod):
			return got
		}
	}
}

// requireNone 安静期内没有状态到达
func requireNone(t *testing.T, stream interfaces.StatusStream) {
	t.Helper()

	select {
	case status, ok := <-stream.Out():
		if ok {
			t.Fatalf("unexpected status %s", status)
		}
	case <-time.After(quietPeriod):
	}
}

// requireClosed 流已结束
func requireClosed(t *testing.T, stream interfaces.StatusStream) {
	t.Helper()

	select {
	case <-stream.Done():
	case <-time.After(recvTimeout):
		t.Fatal("stream not done")
	}
	for {
		select {
		case _, ok := <-stream.Out():
			if !ok {
				return
			}
		case <-time.After(recvTimeout):
			t.Fatal("stream Out not closed")
		}
	}
}

// dedup 压缩连续重复
func dedup(in []types.Status) []types.Status {
	var out []types.Status
	for i, s := range in {
		if i > 0 && in[i-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}

// recStats countingRecorder 的统计快照
type recStats struct {
	registered  int
	failed      int
	released    int
	emitted     []types.Status
	duplicates  int
	dropped     int
	fatal       int
	delivery    int
	subscribers int
}

// countingRecorder 记录调用次数
type countingRecorder struct {
	mu    sync.Mutex
	stats recStats
}

func (r *countingRecorder) update(fn func(*recStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.stats)
}

func (r *countingRecorder) Registered() {
	r.update(func(s *recStats) { s.registered++ })
}

func (r *countingRecorder) RegistrationFailed() {
	r.update(func(s *recStats) { s.failed++ })
}

func (r *countingRecorder) Released() {
	r.update(func(s *recStats) { s.released++ })
}

func (r *countingRecorder) Emitted(status types.Status) {
	r.update(func(s *recStats) { s.emitted = append(s.emitted, status) })
}

func (r *countingRecorder) DuplicateSuppressed() {
	r.update(func(s *recStats) { s.duplicates++ })
}

func (r *countingRecorder) Dropped(n int) {
	r.update(func(s *recStats) { s.dropped += n })
}

func (r *countingRecorder) Fatal() {
	r.update(func(s *recStats) { s.fatal++ })
}

func (r *countingRecorder) DeliveryFailed() {
	r.update(func(s *recStats) { s.delivery++ })
}

func (r *countingRecorder) SubscribersChanged(n int) {
	r.update(func(s *recStats) { s.subscribers = n })
}

func (r *countingRecorder) snapshot() recStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.stats
	out.emitted = append([]types.Status(nil), r.stats.emitted...)
	return out
}
