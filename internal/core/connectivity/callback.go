package connectivity

import (
	"time"

	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/types"
)

// callback 向通知源注册的回调对象
//
// 每个会话一个实例，注销后到达的事件（旧会话）被忽略。
type callback struct {
	bridge *Bridge
	sess   *session
}

var (
	_ interfaces.NetworkCallback = (*callback)(nil)
	_ interfaces.FatalHandler    = (*callback)(nil)
)

// OnAvailable 网络可用
func (c *callback) OnAvailable() {
	c.bridge.handle(c.sess, types.StatusAvailable)
}

// OnLosing 网络即将丢失
//
// ttl 不进入状态模型，只记录在日志中。
func (c *callback) OnLosing(ttl time.Duration) {
	logger.Debug("网络即将丢失", "gen", c.sess.gen, "ttl", ttl)
	c.bridge.handle(c.sess, types.StatusLosing)
}

// OnLost 网络已丢失
func (c *callback) OnLost() {
	c.bridge.handle(c.sess, types.StatusLost)
}

// OnUnavailable 没有可用网络
func (c *callback) OnUnavailable() {
	c.bridge.handle(c.sess, types.StatusUnavailable)
}

// OnFatal 通知源不可恢复的错误
func (c *callback) OnFatal(err error) {
	c.bridge.fatal(c.sess, err)
}
