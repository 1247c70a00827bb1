package connectivity

import "github.com/dep2p/go-netstatus/pkg/types"

// Recorder 记录桥接运行指标
//
// 所有方法都可能在持有 Bridge 内部锁时被调用，实现不能阻塞，
// 也不能回调 Bridge。
type Recorder interface {
	// Registered 注册成功
	Registered()
	// RegistrationFailed 注册失败
	RegistrationFailed()
	// Released 注册已释放
	Released()
	// Emitted 向订阅者发出了一个新状态
	Emitted(status types.Status)
	// DuplicateSuppressed 连续重复的状态被抑制
	DuplicateSuppressed()
	// Dropped 慢订阅者队列溢出，丢弃了待投递状态
	Dropped(n int)
	// Fatal 通知源致命错误
	Fatal()
	// DeliveryFailed 订阅者处理失败
	DeliveryFailed()
	// SubscribersChanged 活跃订阅数变化
	SubscribersChanged(n int)
}

// NopRecorder 返回不记录任何内容的 Recorder
func NopRecorder() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Registered() {}
func (nopRecorder) RegistrationFailed() {}
func (nopRecorder) Released() {}
func (nopRecorder) Emitted(types.Status) {}
func (nopRecorder) DuplicateSuppressed() {}
func (nopRecorder) Dropped(int) {}
func (nopRecorder) Fatal() {}
func (nopRecorder) DeliveryFailed() {}
func (nopRecorder) SubscribersChanged(int) {}
