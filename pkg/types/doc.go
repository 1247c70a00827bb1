// Package types 定义 netstatus 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，按值比较。
//
// # 文件组织
//
//   - status.go - Status 连通性状态（Available / Losing / Lost / Unavailable）
package types
