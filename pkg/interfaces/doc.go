// Package interfaces 定义 netstatus 的公共接口
//
// 一个接口文件对应一个实现目录：
//   - connectivity.go - 连通性观察者与状态流（internal/core/connectivity）
//   - notifier.go     - 底层网络变化通知源（internal/core/connectivity/notifier）
//
// # 依赖方向
//
//	netstatus（门面）→ connectivity → notifier
//
// 消费者只依赖 ConnectivityObserver，通知源只需实现 NetworkNotifier，
// 二者都可以独立替换（模拟通知源、不同操作系统的子系统）。
package interfaces
