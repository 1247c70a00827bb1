package notifier

import (
	"sync"
	"time"
)

// event 回调记录
type event struct {
	kind string
	ttl  time.Duration
	err  error
}

// recordingCallback 把回调记录到通道
type recordingCallback struct {
	events chan event

	mu  sync.Mutex
	all []string
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{events: make(chan event, 64)}
}

func (c *recordingCallback) push(e event) {
	c.mu.Lock()
	c.all = append(c.all, e.kind)
	c.mu.Unlock()
	c.events <- e
}

func (c *recordingCallback) OnAvailable()               { c.push(event{kind: "available"}) }
func (c *recordingCallback) OnLosing(ttl time.Duration) { c.push(event{kind: "losing", ttl: ttl}) }
func (c *recordingCallback) OnLost()                    { c.push(event{kind: "lost"}) }
func (c *recordingCallback) OnUnavailable()             { c.push(event{kind: "unavailable"}) }

func (c *recordingCallback) kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.all...)
}

// fatalCallback 额外实现 FatalHandler
type fatalCallback struct {
	*recordingCallback
}

func (c fatalCallback) OnFatal(err error) { c.push(event{kind: "fatal", err: err}) }
