// Package connectivity 将回调式网络通知源桥接为去重的状态流
//
// Bridge 把 interfaces.NetworkNotifier 的推送回调转换为任意多个
// 可取消的 StatusStream：
//   - 冷启动：第一个订阅者出现时才向通知源注册回调
//   - 共享会话：后续订阅者复用同一个注册，只收到加入之后的事件
//   - 去重：同一会话内连续相同的状态只投递一次
//   - 释放：最后一个订阅者解除时同步注销回调
//
// # 快速开始
//
//	bridge, _ := connectivity.NewBridge(notifier, connectivity.DefaultConfig(), nil)
//	defer bridge.Close()
//
//	stream, err := bridge.Observe(ctx)
//	if err != nil {
//	    // *RegistrationError：通知源拒绝注册
//	    return err
//	}
//	for status := range stream.Out() {
//	    fmt.Println("Network Status", status)
//	}
//	// stream.Err() 为 nil 表示正常取消
//
// # 会话状态
//
//	registering -> active -> releasing -> released
//
// 注册期间到达的事件会先缓存，注册成功后再按顺序投递；注册失败则全部丢弃。
// 释放期间新的 Observe 会等待释放完成后重新注册，任意时刻最多只有一个注册。
//
// # 背压
//
// 每个订阅者有一个有界队列（默认 16）。队列满时丢弃最旧的待投递状态，
// 并保证丢弃之后相邻状态仍然不同。通知源回调永远不会因为慢消费者而阻塞。
//
// # 错误
//
//   - *RegistrationError: Observe 返回，注册失败
//   - *FatalNotifierError: StatusStream.Err 返回，通知源内部不可恢复错误
//   - *DeliveryError: Collect 返回，消费者处理失败，仅该订阅被解除
//   - ErrBridgeClosed: Bridge 已关闭
package connectivity
