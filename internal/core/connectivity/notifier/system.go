package notifier

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-netstatus/config"
	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/lib/log"
)

var logger = log.Logger("core/connectivity/notifier")

// ============================================================================
// 配置
// ============================================================================

// SystemConfig 系统通知源配置
type SystemConfig struct {
	// PollInterval 正常轮询间隔
	PollInterval time.Duration
	// FastPollInterval 检测到变化后的快速轮询间隔
	FastPollInterval time.Duration
	// FastPollDuration 快速轮询持续时间，0 表示不进入快速模式
	FastPollDuration time.Duration
	// LossGrace 网络消失后的宽限期，0 表示直接通知 Lost
	LossGrace time.Duration
	// MaxReadFailures 连续读取失败阈值
	MaxReadFailures int
	// EnableEvents 是否使用系统路由事件
	EnableEvents bool
}

// DefaultSystemConfig 返回默认配置
func DefaultSystemConfig() SystemConfig {
	return SystemConfigFromUnified(nil)
}

// SystemConfigFromUnified 从统一配置创建
func SystemConfigFromUnified(cfg *config.Config) SystemConfig {
	nc := config.DefaultNotifierConfig()
	if cfg != nil {
		nc = cfg.Notifier
	}
	return SystemConfig{
		PollInterval:     nc.PollInterval.Duration(),
		FastPollInterval: nc.FastPollInterval.Duration(),
		FastPollDuration: nc.FastPollDuration.Duration(),
		LossGrace:        nc.LossGrace.Duration(),
		MaxReadFailures:  nc.MaxReadFailures,
		EnableEvents:     nc.EnableEvents,
	}
}

// ============================================================================
// System 通知源
// ============================================================================

// SystemOption System 选项
type SystemOption func(*System)

// WithStateReader 替换网络状态读取器
func WithStateReader(r StateReader) SystemOption {
	return func(s *System) {
		s.reader = r
	}
}

// WithClock 替换时钟
func WithClock(c clock.Clock) SystemOption {
	return func(s *System) {
		s.clock = c
	}
}

// withTrigger 替换系统事件源
func withTrigger(open openTriggerFunc) SystemOption {
	return func(s *System) {
		s.openTrigger = open
	}
}

// System 观察本机网络接口的通知源
type System struct {
	cfg         SystemConfig
	reader      StateReader
	clock       clock.Clock
	openTrigger openTriggerFunc

	mu    sync.Mutex
	watch *watch
}

var _ interfaces.NetworkNotifier = (*System)(nil)

// watch 一次注册对应的监控循环
type watch struct {
	cb     interfaces.NetworkCallback
	ticker *clock.Ticker
	trig   trigger
	stop   chan struct{}
	done   chan struct{}
}

// NewSystem 创建系统通知源
func NewSystem(cfg SystemConfig, opts ...SystemOption) *System {
	s := &System{
		cfg:         cfg,
		reader:      InterfaceStateReader(),
		clock:       clock.New(),
		openTrigger: openTrigger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxReadFailures < 1 {
		s.cfg.MaxReadFailures = 1
	}
	return s
}

// Register 注册回调并开始监控
//
// 读取初始状态失败时返回错误；成功时先在调用者 goroutine 上
// 通知 OnAvailable 或 OnUnavailable，再启动监控循环。
func (s *System) Register(cb interfaces.NetworkCallback) error {
	if cb == nil {
		return ErrInvalidCallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watch != nil {
		return ErrNotifierBusy
	}

	state, err := s.reader.ReadState()
	if err != nil {
		return fmt.Errorf("read network state: %w", err)
	}

	w := &watch{
		cb:     cb,
		ticker: s.clock.Ticker(s.cfg.PollInterval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if s.cfg.EnableEvents && s.openTrigger != nil {
		trig, err := s.openTrigger()
		switch {
		case err == nil:
			w.trig = trig
		case errors.Is(err, ErrEventsUnsupported):
			logger.Debug("系统路由事件不可用，使用轮询")
		default:
			logger.Warn("打开系统路由事件失败，使用轮询", "error", err)
		}
	}
	s.watch = w

	logger.Info("开始监控网络接口",
		"online", state.IsOnline,
		"preferred", state.PreferredInterface,
		"interfaces", len(state.Interfaces),
		"events", w.trig != nil)

	if state.IsOnline {
		cb.OnAvailable()
	} else {
		cb.OnUnavailable()
	}

	go s.loop(w, state)
	return nil
}

// Unregister 注销回调并等待监控循环退出
func (s *System) Unregister(cb interfaces.NetworkCallback) error {
	s.mu.Lock()
	w := s.watch
	if w == nil || w.cb != cb {
		s.mu.Unlock()
		return ErrNotRegistered
	}
	s.watch = nil
	s.mu.Unlock()

	close(w.stop)
	<-w.done

	logger.Info("停止监控网络接口")
	return nil
}

// ============================================================================
// 监控循环
// ============================================================================

// loopState 监控循环的内部状态，只在循环 goroutine 中访问
type loopState struct {
	last      interfaces.NetworkState
	failures  int
	fast      bool
	fastUntil time.Time
	grace     *clock.Timer
}

func (s *System) loop(w *watch, initial interfaces.NetworkState) {
	defer close(w.done)
	defer w.ticker.Stop()
	if w.trig != nil {
		defer func() { _ = w.trig.Close() }()
	}

	ls := &loopState{last: initial}
	defer ls.stopGrace()

	var trigC <-chan struct{}
	if w.trig != nil {
		trigC = w.trig.C()
	}

	for {
		var graceC <-chan time.Time
		if ls.grace != nil {
			graceC = ls.grace.C
		}

		select {
		case <-w.stop:
			return

		case <-trigC:
			// 系统事件触发立即检查
			if !s.check(w, ls) {
				return
			}
			s.enterFastMode(w, ls)

		case <-w.ticker.C:
			s.maybeExitFastMode(w, ls)
			if !s.check(w, ls) {
				return
			}

		case <-graceC:
			ls.grace = nil
			logger.Debug("宽限期结束，网络已丢失")
			w.cb.OnLost()
		}
	}
}

// check 读取状态并通知变化，返回 false 表示循环应退出
func (s *System) check(w *watch, ls *loopState) bool {
	cur, err := s.reader.ReadState()
	if err != nil {
		ls.failures++
		logger.Warn("获取网络状态失败", "failures", ls.failures, "error", err)
		if ls.failures >= s.cfg.MaxReadFailures {
			s.fail(w, fmt.Errorf("read network state failed %d times: %w", ls.failures, err))
			return false
		}
		return true
	}
	ls.failures = 0

	prev := ls.last
	if !hasChanged(prev, cur) {
		return true
	}
	ls.last = cur
	s.enterFastMode(w, ls)

	switch {
	case prev.IsOnline && !cur.IsOnline:
		if s.cfg.LossGrace > 0 {
			ls.stopGrace()
			ls.grace = s.clock.Timer(s.cfg.LossGrace)
			logger.Info("网络即将丢失", "grace", s.cfg.LossGrace)
			w.cb.OnLosing(s.cfg.LossGrace)
		} else {
			logger.Info("网络已丢失")
			w.cb.OnLost()
		}

	case !prev.IsOnline && cur.IsOnline:
		ls.stopGrace()
		logger.Info("网络已恢复", "preferred", cur.PreferredInterface)
		w.cb.OnAvailable()

	case cur.IsOnline && prev.PreferredInterface != cur.PreferredInterface:
		logger.Info("首选网络接口切换", "from", prev.PreferredInterface, "to", cur.PreferredInterface)
		w.cb.OnAvailable()

	default:
		logger.Debug("网络接口变化", "interfaces", len(cur.Interfaces))
	}
	return true
}

// fail 报告致命错误
func (s *System) fail(w *watch, err error) {
	logger.Error("网络状态读取持续失败，停止监控", "error", err)
	if h, ok := w.cb.(interfaces.FatalHandler); ok {
		h.OnFatal(err)
		return
	}
	w.cb.OnUnavailable()
}

// enterFastMode 进入（或延长）快速轮询模式
func (s *System) enterFastMode(w *watch, ls *loopState) {
	if s.cfg.FastPollDuration <= 0 || s.cfg.FastPollInterval >= s.cfg.PollInterval {
		return
	}
	ls.fastUntil = s.clock.Now().Add(s.cfg.FastPollDuration)
	if ls.fast {
		return
	}
	ls.fast = true
	w.ticker.Reset(s.cfg.FastPollInterval)
	logger.Debug("进入快速轮询模式")
}

// maybeExitFastMode 快速轮询到期后恢复正常间隔
func (s *System) maybeExitFastMode(w *watch, ls *loopState) {
	if !ls.fast || s.clock.Now().Before(ls.fastUntil) {
		return
	}
	ls.fast = false
	w.ticker.Reset(s.cfg.PollInterval)
	logger.Debug("退出快速轮询模式")
}

func (ls *loopState) stopGrace() {
	if ls.grace != nil {
		ls.grace.Stop()
		ls.grace = nil
	}
}
