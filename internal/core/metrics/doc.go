// Package metrics 提供 Prometheus 监控指标
//
// ConnectivityMetrics 实现 connectivity.Recorder，记录状态流桥接的运行情况：
//   - 注册/注册失败/释放次数
//   - 发出的状态、被抑制的重复状态、慢订阅者丢弃的状态
//   - 通知源致命错误、订阅者处理失败
//   - 当前订阅数、当前状态（one-hot）
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewConnectivityMetrics(reg)
//	bridge, _ := connectivity.NewBridge(notifier, connectivity.DefaultConfig(), m)
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    metrics.Module(),
//	    connectivity.Module(),
//	    ...
//	)
//
// Module 在指标被禁用时提供 connectivity.NopRecorder()。
// 没有注入 prometheus.Registerer 时使用独立的 Registry。
//
// # 指标
//
//	netstatus_registrations_total
//	netstatus_registration_failures_total
//	netstatus_releases_total
//	netstatus_emissions_total{status}
//	netstatus_duplicates_suppressed_total
//	netstatus_dropped_total
//	netstatus_fatal_errors_total
//	netstatus_delivery_failures_total
//	netstatus_subscribers
//	netstatus_status{status}
package metrics
