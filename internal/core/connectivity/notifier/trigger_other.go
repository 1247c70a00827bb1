//go:build !linux

package notifier

// openTrigger 非 Linux 平台只使用轮询
func openTrigger() (trigger, error) {
	return nil, ErrEventsUnsupported
}
