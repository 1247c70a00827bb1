// Package netstatus 观察网络连通性并以去重的状态流提供给订阅者
//
// netstatus 把操作系统的网络变化回调转换为一个可以被任意多个消费者
// 订阅的 Status 流：
//
//   - Available: 网络可用
//   - Losing: 网络即将丢失
//   - Lost: 网络已丢失
//   - Unavailable: 没有可用网络（初始值）
//
// # 快速开始
//
//	import "github.com/dep2p/go-netstatus"
//
//	obs, err := netstatus.Start(ctx, netstatus.WithPreset(netstatus.PresetMobile))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Close()
//
//	stream, err := obs.Observe(ctx)
//	if err != nil {
//	    // *netstatus.RegistrationError：系统拒绝注册网络回调
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for status := range stream.Out() {
//	    fmt.Println("Network Status", status)
//	}
//
// # 语义
//
//   - 冷启动：第一个订阅出现时才向系统注册回调，最后一个订阅解除时注销
//   - 共享：同时存在的订阅共享一个注册，后加入的订阅只收到之后的状态
//   - 去重：同一注册期间连续相同的状态只投递一次
//   - 背压：慢订阅者丢弃最旧的待投递状态，系统回调从不阻塞
//
// # 架构
//
//	┌──────────────────────────────────────────────────────┐
//	│  Observer              netstatus.New() / Start()     │
//	├──────────────────────────────────────────────────────┤
//	│  connectivity.Bridge   会话、去重、扇出               │
//	│  metrics               Prometheus 指标                │
//	├──────────────────────────────────────────────────────┤
//	│  notifier.System       net.Interfaces + netlink      │
//	└──────────────────────────────────────────────────────┘
//
// # 文件组织
//
//   - netstatus.go: 版本信息与类型别名
//   - observer.go: Observer 门面
//   - options.go: 配置选项
//   - presets.go: 预设配置
//   - fx.go: Fx 模块组装
//   - errors.go: 错误定义
package netstatus
