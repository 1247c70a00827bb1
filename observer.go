package netstatus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/internal/core/connectivity"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/lib/log"
	"github.com/dep2p/go-netstatus/pkg/types"
)

var logger = log.Logger("netstatus")

const (
	// startTimeout Fx App 启动超时
	startTimeout = 15 * time.Second

	// stopTimeout Close 使用的停止超时
	stopTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Observer
// ════════════════════════════════════════════════════════════════════════════

// Observer 网络连通性观察者
//
// Observer 是门面（Facade），组装通知源、指标和连通性桥接。
// 由调用者显式创建和关闭，不依赖全局单例。
//
// 使用示例：
//
//	obs, err := netstatus.New(netstatus.WithPreset(netstatus.PresetDesktop))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := obs.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Close()
//
//	stream, err := obs.Observe(ctx)
type Observer struct {
	cfg *config.Config
	app *fx.App

	// bridge 由 Fx 注入
	bridge *connectivity.Bridge

	mu      sync.RWMutex
	started bool
	closed  bool
}

var _ interfaces.ConnectivityObserver = (*Observer)(nil)

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建 Observer
//
// 创建但不启动，需要调用 Start()。此时不会向系统注册任何回调，
// 注册发生在第一次 Observe 时。
func New(opts ...Option) (*Observer, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	obs := &Observer{cfg: cfg}
	obs.app = buildFxApp(cfg, o, obs)
	if err := obs.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	return obs, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Start()。
func Start(ctx context.Context, opts ...Option) (*Observer, error) {
	obs, err := New(opts...)
	if err != nil {
		return nil, err
	}

	if err := obs.Start(ctx); err != nil {
		return nil, fmt.Errorf("start observer: %w", err)
	}

	return obs, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动 Observer
func (obs *Observer) Start(ctx context.Context) error {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if obs.closed {
		return ErrObserverClosed
	}
	if obs.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := obs.app.Start(startCtx); err != nil {
		logger.Error("Observer 启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	obs.started = true
	logger.Info("Observer 已启动",
		"subscriber_buffer", obs.cfg.Connectivity.SubscriberBuffer,
		"loss_grace", obs.cfg.Notifier.LossGrace,
		"metrics", obs.cfg.Metrics.Enabled)
	return nil
}

// Stop 停止 Observer
//
// 所有订阅以 ErrBridgeClosed 结束，系统回调被注销。
// 停止后 Observer 不能再次启动。
func (obs *Observer) Stop(ctx context.Context) error {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if obs.closed {
		return ErrObserverClosed
	}
	if !obs.started {
		return ErrNotStarted
	}

	return obs.stopLocked(ctx)
}

// Close 关闭 Observer 并释放所有资源
//
// 可以多次调用；未启动的 Observer 直接标记为关闭。
func (obs *Observer) Close() error {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if obs.closed {
		return nil
	}
	if !obs.started {
		obs.closed = true
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return obs.stopLocked(ctx)
}

func (obs *Observer) stopLocked(ctx context.Context) error {
	obs.started = false
	obs.closed = true

	if err := obs.app.Stop(ctx); err != nil {
		logger.Error("Observer 停止失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}

	logger.Info("Observer 已关闭")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              状态订阅
// ════════════════════════════════════════════════════════════════════════════

// Observe 订阅状态流
//
// 第一个订阅触发向系统注册网络回调；注册失败返回 *RegistrationError。
// ctx 取消或调用 StatusStream.Close 解除订阅。
func (obs *Observer) Observe(ctx context.Context) (StatusStream, error) {
	bridge, err := obs.activeBridge()
	if err != nil {
		return nil, err
	}
	return bridge.Observe(ctx)
}

// Collect 订阅并对每个状态调用 fn，直到 ctx 取消、流结束或 fn 出错
//
// fn 出错时返回 *DeliveryError，只解除这一个订阅。
func (obs *Observer) Collect(ctx context.Context, fn func(Status) error) error {
	stream, err := obs.Observe(ctx)
	if err != nil {
		return err
	}
	return connectivity.Collect(ctx, stream, fn)
}

// Current 返回最近一次发出的状态
//
// 没有活跃订阅或尚未收到任何通知时返回 StatusUnavailable。
func (obs *Observer) Current() Status {
	obs.mu.RLock()
	bridge := obs.bridge
	obs.mu.RUnlock()

	if bridge == nil {
		return types.DefaultStatus
	}
	return bridge.Current()
}

// Subscribers 返回当前订阅数
func (obs *Observer) Subscribers() int {
	obs.mu.RLock()
	bridge := obs.bridge
	obs.mu.RUnlock()

	if bridge == nil {
		return 0
	}
	return bridge.Subscribers()
}

// Config 返回生效配置的副本
func (obs *Observer) Config() *config.Config {
	return obs.cfg.Clone()
}

func (obs *Observer) activeBridge() (*connectivity.Bridge, error) {
	obs.mu.RLock()
	defer obs.mu.RUnlock()

	if obs.closed {
		return nil, ErrObserverClosed
	}
	if !obs.started {
		return nil, ErrNotStarted
	}
	return obs.bridge, nil
}
