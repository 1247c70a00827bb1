package notifier

// trigger 系统网络事件源，有事件时向 C 发送信号
type trigger interface {
	C() <-chan struct{}
	Close() error
}

// openTriggerFunc 打开平台事件源，测试中可替换
type openTriggerFunc func() (trigger, error)
