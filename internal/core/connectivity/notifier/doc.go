// Package notifier 提供网络变化通知源实现
//
// 两种实现都满足 interfaces.NetworkNotifier：
//
//   - System: 观察本机网络接口。定期轮询 net.Interfaces()，检测到变化后
//     短时间内切换为快速轮询；Linux 上额外订阅 NETLINK_ROUTE 的链路/地址/路由
//     事件以立即触发检查。网络消失时先通知 OnLosing(宽限期)，宽限期结束仍离线
//     再通知 OnLost。
//   - Simulated: 可编程的通知源，事件在调用者 goroutine 上同步投递，
//     并记录注册/注销次数，用于测试。
//
// # 事件映射
//
//	注册时在线            -> OnAvailable
//	注册时离线            -> OnUnavailable
//	在线 -> 离线          -> OnLosing(LossGrace)，宽限期后 OnLost
//	在线 -> 离线（无宽限）-> OnLost
//	离线 -> 在线          -> OnAvailable
//	首选接口切换          -> OnAvailable
//	连续读取失败          -> OnFatal（回调实现了 interfaces.FatalHandler 时）
//
// # 并发
//
// System 同一时间只接受一个回调（ErrNotifierBusy）。Unregister 会等待
// 监控循环退出，因此不能在回调内部调用。
package notifier
