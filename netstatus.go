package netstatus

import (
	"github.com/dep2p/go-netstatus/pkg/interfaces"
	"github.com/dep2p/go-netstatus/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "netstatus " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// Status 网络连通性状态
type Status = types.Status

// 状态常量
const (
	StatusUnavailable = types.StatusUnavailable
	StatusAvailable   = types.StatusAvailable
	StatusLosing      = types.StatusLosing
	StatusLost        = types.StatusLost
)

// StatusStream 单个订阅者的状态流
type StatusStream = interfaces.StatusStream

// NetworkNotifier 回调式网络变化通知源
type NetworkNotifier = interfaces.NetworkNotifier

// NetworkCallback 网络变化回调
type NetworkCallback = interfaces.NetworkCallback
