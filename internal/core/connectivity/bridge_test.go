package connectivity

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netstatus/internal/core/connectivity/notifier"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/types"
)

var (
	available   = types.StatusAvailable
	losing      = types.StatusLosing
	lost        = types.StatusLost
	unavailable = types.StatusUnavailable
)

// ============================================================================
// 构造
// ============================================================================

func TestNewBridge_NilNotifier(t *testing.T) {
	b, err := NewBridge(nil, DefaultConfig(), nil)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrNilNotifier)
}

func TestBridge_ImplementsInterface(t *testing.T) {
	b, _ := newTestBridge(t, 4)
	var _ interfaces.ConnectivityObserver = b
}

// ============================================================================
// 启动与映射
// ============================================================================

// TestBridge_ColdStart 订阅前不注册
func TestBridge_ColdStart(t *testing.T) {
	b, sim := newTestBridge(t, 4)

	assert.Equal(t, 0, sim.Registrations())
	assert.False(t, b.Active())

	subscribe(t, b)
	assert.Equal(t, 1, sim.Registrations())
	assert.True(t, b.Active())
}

// TestBridge_Mapping 回调到状态的映射
func TestBridge_Mapping(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub := subscribe(t, b)

	sim.Available()
	sim.Losing(30 * time.Second)
	sim.Lost()
	sim.Unavailable()

	assert.Equal(t, []types.Status{available, losing, lost, unavailable}, recvN(t, sub, 4))
}

// ============================================================================
// 去重
// ============================================================================

// TestBridge_Dedup 连续重复被抑制
func TestBridge_Dedup(t *testing.T) {
	rec := &countingRecorder{}
	sim := notifier.NewSimulated()
	b, err := NewBridge(sim, Config{SubscriberBuffer: 16}, rec)
	require.NoError(t, err)
	defer b.Close()

	sub := subscribe(t, b)
	sim.Emit(available, available, losing, lost, lost, available)

	assert.Equal(t, []types.Status{available, losing, lost, available}, recvN(t, sub, 4))
	requireNone(t, sub)

	stats := rec.snapshot()
	assert.Equal(t, 2, stats.duplicates)
	assert.Equal(t, []types.Status{available, losing, lost, available}, stats.emitted)
}

// TestBridge_FirstEmissionDelivered 会话的第一个状态总是投递，即使等于默认值
func TestBridge_FirstEmissionDelivered(t *testing.T) {
	b, sim := newTestBridge(t, 4)
	sub := subscribe(t, b)

	sim.Unavailable()
	assert.Equal(t, []types.Status{unavailable}, recvN(t, sub, 1))
}

// TestBridge_NoConsecutiveDuplicates 随机序列：输出等于输入去重
func TestBridge_NoConsecutiveDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	all := types.AllStatuses()

	for round := 0; round < 20; round++ {
		raw := make([]types.Status, 1+rng.Intn(100))
		for i := range raw {
			raw[i] = all[rng.Intn(len(all))]
		}

		b, sim := newTestBridge(t, 256)
		sub := subscribe(t, b)
		sim.Emit(raw...)

		want := dedup(raw)
		assert.Equal(t, want, recvN(t, sub, len(want)), "round %d", round)
		require.NoError(t, sub.Close())
	}
}

// TestBridge_SlowConsumer 慢消费者：丢弃最旧状态，仍然没有连续重复
func TestBridge_SlowConsumer(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := types.AllStatuses()

	rec := &countingRecorder{}
	sim := notifier.NewSimulated()
	b, err := NewBridge(sim, Config{SubscriberBuffer: 2}, rec)
	require.NoError(t, err)
	defer b.Close()

	sub := subscribe(t, b)

	raw := make([]types.Status, 500)
	for i := range raw {
		raw[i] = all[rng.Intn(len(all))]
	}
	sim.Emit(raw...)

	got := drain(sub)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.NotEqual(t, got[i-1], got[i], "consecutive duplicate at %d", i)
	}
	want := dedup(raw)
	assert.Equal(t, want[len(want)-1], got[len(got)-1], "newest status is always delivered")
	assert.Positive(t, sub.Dropped())
	assert.Equal(t, int(sub.Dropped()), rec.snapshot().dropped)
}

// ============================================================================
// 多订阅者
// ============================================================================

// TestBridge_TwoSubscribersIdentical 两个订阅者看到相同序列
func TestBridge_TwoSubscribersIdentical(t *testing.T) {
	b, sim := newTestBridge(t, 64)
	sub1 := subscribe(t, b)
	sub2 := subscribe(t, b)

	assert.Equal(t, 1, sim.Registrations())
	assert.Equal(t, 2, b.Subscribers())

	raw := []types.Status{available, available, losing, available, lost, unavailable, unavailable, available}
	sim.Emit(raw...)

	want := dedup(raw)
	assert.Equal(t, want, recvN(t, sub1, len(want)))
	assert.Equal(t, want, recvN(t, sub2, len(want)))
}

// TestBridge_LateSubscriber 后加入的订阅者只收到之后的事件
func TestBridge_LateSubscriber(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub1 := subscribe(t, b)

	sim.Available()
	assert.Equal(t, []types.Status{available}, recvN(t, sub1, 1))

	sub2 := subscribe(t, b)
	assert.Equal(t, 1, sim.Registrations())

	// 与会话上一次状态相同，被抑制
	sim.Available()
	sim.Lost()

	assert.Equal(t, []types.Status{lost}, recvN(t, sub1, 1))
	assert.Equal(t, []types.Status{lost}, recvN(t, sub2, 1))
}

// TestBridge_DetachOneOfTwo 解除一个订阅不影响另一个
func TestBridge_DetachOneOfTwo(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub1 := subscribe(t, b)
	sub2 := subscribe(t, b)

	require.NoError(t, sub1.Close())
	requireClosed(t, sub1)
	assert.NoError(t, sub1.Err())
	assert.Equal(t, 0, sim.Unregistrations())
	assert.Equal(t, 1, b.Subscribers())

	sim.Available()
	assert.Equal(t, []types.Status{available}, recvN(t, sub2, 1))
}

// ============================================================================
// 取消与重新订阅
// ============================================================================

// TestBridge_CloseReleases 最后一个订阅解除时同步注销
func TestBridge_CloseReleases(t *testing.T) {
	b, sim := newTestBridge(t, 8)

	sub, err := b.Subscribe(context.Background())
	require.NoError(t, err)

	sim.Available()
	recvN(t, sub, 1)

	require.NoError(t, sub.Close())
	assert.Equal(t, 1, sim.Unregistrations(), "unregistered before Close returns")
	assert.Equal(t, 0, sim.Live())
	assert.False(t, b.Active())

	// 重复关闭无副作用
	require.NoError(t, sub.Close())
	assert.Equal(t, 1, sim.Unregistrations())

	// 重新订阅：新注册，去重状态重置
	sub2 := subscribe(t, b)
	assert.Equal(t, 2, sim.Registrations())
	sim.Available()
	assert.Equal(t, []types.Status{available}, recvN(t, sub2, 1))
}

// TestBridge_ContextCancel ctx 取消自动解除订阅
func TestBridge_ContextCancel(t *testing.T) {
	b, sim := newTestBridge(t, 8)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	requireClosed(t, sub)
	assert.NoError(t, sub.Err())
	assert.Eventually(t, func() bool { return sim.Unregistrations() == 1 }, recvTimeout, time.Millisecond)
}

// TestBridge_CancelledContext 已取消的 ctx 不注册
func TestBridge_CancelledContext(t *testing.T) {
	b, sim := newTestBridge(t, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Observe(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sim.Registrations())
}

// TestBridge_RapidResubscribe 快速订阅/取消不会出现两个同时存活的注册
func TestBridge_RapidResubscribe(t *testing.T) {
	b, sim := newTestBridge(t, 4)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				sub, err := b.Subscribe(context.Background())
				if !assert.NoError(t, err) {
					return
				}
				sim.Available()
				_ = sub.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sim.PeakLive())
	assert.Equal(t, 0, sim.Live())
	assert.Equal(t, sim.Registrations(), sim.Unregistrations())
	assert.False(t, b.Active())
}

// ============================================================================
// 注册失败
// ============================================================================

// TestBridge_RegistrationFailure 注册失败返回 RegistrationError，不发出任何状态
func TestBridge_RegistrationFailure(t *testing.T) {
	rec := &countingRecorder{}
	sim := notifier.NewSimulated()
	b, err := NewBridge(sim, DefaultConfig(), rec)
	require.NoError(t, err)
	defer b.Close()

	boom := errors.New("permission denied")
	sim.FailNextRegister(boom)

	stream, err := b.Observe(context.Background())
	assert.Nil(t, stream)

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.ErrorIs(t, err, boom)
	assert.False(t, b.Active())
	assert.Equal(t, 0, b.Subscribers())
	assert.Equal(t, unavailable, b.Current())

	stats := rec.snapshot()
	assert.Equal(t, 1, stats.failed)
	assert.Empty(t, stats.emitted)

	// 不自动重试；下一次 Observe 重新注册
	assert.Equal(t, 0, sim.Registrations())
	sub := subscribe(t, b)
	assert.Equal(t, 1, sim.Registrations())
	sim.Lost()
	assert.Equal(t, []types.Status{lost}, recvN(t, sub, 1))
}

// blockRegister 让 Register 阻塞到 release 被调用，返回 result
func blockRegister(sim *notifier.Simulated, result error) (entered <-chan struct{}, release func()) {
	enteredCh := make(chan struct{})
	releaseCh := make(chan struct{})
	var once sync.Once
	sim.SetRegisterHook(func(interfaces.NetworkCallback) error {
		once.Do(func() { close(enteredCh) })
		<-releaseCh
		return result
	})
	return enteredCh, func() { close(releaseCh) }
}

// TestBridge_WaitersShareRegistrationFailure 注册期间的等待者收到同一个错误
func TestBridge_WaitersShareRegistrationFailure(t *testing.T) {
	b, sim := newTestBridge(t, 4)

	boom := errors.New("subsystem unavailable")
	entered, release := blockRegister(sim, boom)

	const n = 4
	errs := make(chan error, n)
	go func() {
		_, err := b.Observe(context.Background())
		errs <- err
	}()
	<-entered

	for i := 1; i < n; i++ {
		go func() {
			_, err := b.Observe(context.Background())
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return b.Subscribers() == n }, recvTimeout, time.Millisecond)
	release()

	for i := 0; i < n; i++ {
		err := <-errs
		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 0, sim.Registrations())
	assert.Equal(t, 0, b.Subscribers())
}

// TestBridge_WaitersShareRegistration 注册期间的等待者共享同一个注册
func TestBridge_WaitersShareRegistration(t *testing.T) {
	b, sim := newTestBridge(t, 4)
	entered, release := blockRegister(sim, nil)

	const n = 3
	subs := make(chan *Subscription, n)
	go func() {
		sub, err := b.Subscribe(context.Background())
		assert.NoError(t, err)
		subs <- sub
	}()
	<-entered
	for i := 1; i < n; i++ {
		go func() {
			sub, err := b.Subscribe(context.Background())
			assert.NoError(t, err)
			subs <- sub
		}()
	}
	require.Eventually(t, func() bool { return b.Subscribers() == n }, recvTimeout, time.Millisecond)
	release()

	got := make([]*Subscription, 0, n)
	for i := 0; i < n; i++ {
		sub := <-subs
		require.NotNil(t, sub)
		got = append(got, sub)
	}
	assert.Equal(t, 1, sim.Registrations())

	sim.Losing(time.Second)
	for _, sub := range got {
		assert.Equal(t, []types.Status{losing}, recvN(t, sub, 1))
		require.NoError(t, sub.Close())
	}
	assert.Equal(t, 1, sim.Unregistrations())
}

// TestBridge_WaiterCancelled 等待注册时取消，只解除该等待者
func TestBridge_WaiterCancelled(t *testing.T) {
	b, sim := newTestBridge(t, 4)
	entered, release := blockRegister(sim, nil)

	first := make(chan *Subscription, 1)
	go func() {
		sub, err := b.Subscribe(context.Background())
		assert.NoError(t, err)
		first <- sub
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	waitErr := make(chan error, 1)
	go func() {
		_, err := b.Subscribe(ctx)
		waitErr <- err
	}()
	require.Eventually(t, func() bool { return b.Subscribers() == 2 }, recvTimeout, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-waitErr, context.Canceled)

	release()
	sub := <-first
	require.NotNil(t, sub)
	assert.Equal(t, 1, b.Subscribers())
	require.NoError(t, sub.Close())
	assert.Equal(t, 1, sim.Unregistrations())
}

// TestBridge_EarlyEvents 注册期间到达的事件在注册成功后投递
func TestBridge_EarlyEvents(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sim.SetRegisterHook(func(cb interfaces.NetworkCallback) error {
		cb.OnAvailable()
		cb.OnAvailable()
		cb.OnLost()
		return nil
	})

	sub := subscribe(t, b)
	assert.Equal(t, []types.Status{available, lost}, recvN(t, sub, 2))
	assert.Equal(t, lost, b.Current())
}

// TestBridge_EarlyEventsDiscardedOnFailure 注册失败时丢弃注册期间的事件
func TestBridge_EarlyEventsDiscardedOnFailure(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	boom := errors.New("late failure")
	sim.SetRegisterHook(func(cb interfaces.NetworkCallback) error {
		cb.OnAvailable()
		return boom
	})

	_, err := b.Observe(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, unavailable, b.Current())
}

// ============================================================================
// 致命错误
// ============================================================================

// TestBridge_Fatal 所有订阅以 FatalNotifierError 结束，注册只释放一次
func TestBridge_Fatal(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub1 := subscribe(t, b)
	sub2 := subscribe(t, b)

	sim.Available()
	recvN(t, sub1, 1)
	recvN(t, sub2, 1)

	boom := errors.New("netlink socket closed")
	sim.Fatal(boom)

	for _, sub := range []*Subscription{sub1, sub2} {
		requireClosed(t, sub)
		var fatal *FatalNotifierError
		require.ErrorAs(t, sub.Err(), &fatal)
		assert.ErrorIs(t, sub.Err(), boom)
	}
	require.Eventually(t, func() bool { return sim.Unregistrations() == 1 }, recvTimeout, time.Millisecond)

	// 再次致命错误（过期回调）被忽略
	sim.Fatal(boom)
	assert.Equal(t, 1, sim.Unregistrations())

	// 关闭已结束的订阅无副作用
	require.NoError(t, sub1.Close())
	assert.Equal(t, 1, sim.Unregistrations())

	// 之后可以重新订阅
	sub3 := subscribe(t, b)
	assert.Equal(t, 2, sim.Registrations())
	sim.Lost()
	assert.Equal(t, []types.Status{lost}, recvN(t, sub3, 1))
}

// TestBridge_FatalDuringRegistration 注册期间的致命错误在注册完成后生效
func TestBridge_FatalDuringRegistration(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	boom := errors.New("broken")
	sim.SetRegisterHook(func(cb interfaces.NetworkCallback) error {
		cb.OnAvailable()
		cb.(interfaces.FatalHandler).OnFatal(boom)
		return nil
	})

	sub, err := b.Subscribe(context.Background())
	require.NoError(t, err)

	requireClosed(t, sub)
	assert.ErrorIs(t, sub.Err(), boom)
	assert.Equal(t, 1, sim.Unregistrations())
	assert.False(t, b.Active())
}

// ============================================================================
// 过期回调
// ============================================================================

// TestBridge_StaleCallbackIgnored 旧会话的回调不影响新会话
func TestBridge_StaleCallbackIgnored(t *testing.T) {
	b, sim := newTestBridge(t, 8)

	var (
		mu  sync.Mutex
		cbs []interfaces.NetworkCallback
	)
	sim.SetRegisterHook(func(cb interfaces.NetworkCallback) error {
		mu.Lock()
		cbs = append(cbs, cb)
		mu.Unlock()
		return nil
	})

	sub1, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	require.NoError(t, sub1.Close())

	sub2 := subscribe(t, b)

	mu.Lock()
	old := cbs[0]
	mu.Unlock()

	old.OnAvailable()
	requireNone(t, sub2)
	assert.Equal(t, unavailable, b.Current())

	sim.Lost()
	assert.Equal(t, []types.Status{lost}, recvN(t, sub2, 1))
}

// ============================================================================
// Current / Close
// ============================================================================

func TestBridge_Current(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	assert.Equal(t, types.DefaultStatus, b.Current())

	sub, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, unavailable, b.Current(), "no emission yet")

	sim.Available()
	assert.Equal(t, available, b.Current())
	sim.Losing(time.Second)
	assert.Equal(t, losing, b.Current())

	require.NoError(t, sub.Close())
	assert.Equal(t, unavailable, b.Current(), "no live session")
}

// TestBridge_Close 关闭后所有订阅以 ErrBridgeClosed 结束
func TestBridge_Close(t *testing.T) {
	sim := notifier.NewSimulated()
	b, err := NewBridge(sim, DefaultConfig(), nil)
	require.NoError(t, err)

	sub1, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	sub2, err := b.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.Close())
	for _, sub := range []*Subscription{sub1, sub2} {
		requireClosed(t, sub)
		assert.ErrorIs(t, sub.Err(), ErrBridgeClosed)
	}
	assert.Equal(t, 1, sim.Unregistrations())

	_, err = b.Observe(context.Background())
	assert.ErrorIs(t, err, ErrBridgeClosed)

	require.NoError(t, b.Close())
	assert.Equal(t, 1, sim.Unregistrations())
}

// TestBridge_RecorderLifecycle 指标记录覆盖注册、订阅数和释放
func TestBridge_RecorderLifecycle(t *testing.T) {
	rec := &countingRecorder{}
	sim := notifier.NewSimulated()
	b, err := NewBridge(sim, DefaultConfig(), rec)
	require.NoError(t, err)
	defer b.Close()

	sub1, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	sub2, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rec.snapshot().subscribers)

	require.NoError(t, sub1.Close())
	require.NoError(t, sub2.Close())

	stats := rec.snapshot()
	assert.Equal(t, 1, stats.registered)
	assert.Equal(t, 1, stats.released)
	assert.Equal(t, 0, stats.subscribers)
}
