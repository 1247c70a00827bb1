package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              Status - 连通性状态
// ============================================================================

// Status 网络连通性状态
//
// 封闭的四值枚举，只做分类，不约束状态之间的转换顺序（任何值都可以跟在任何值之后）。
// 零值为 StatusUnavailable，即收到任何通知之前使用的默认初始值。
type Status int

const (
	// StatusUnavailable 无可用网络（默认初始值）
	StatusUnavailable Status = iota
	// StatusAvailable 网络可用
	StatusAvailable
	// StatusLosing 网络即将丢失
	StatusLosing
	// StatusLost 网络已丢失
	StatusLost
)

// DefaultStatus 首次通知到达之前使用的状态
const DefaultStatus = StatusUnavailable

// String 返回状态的显示名称
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusLosing:
		return "Losing"
	case StatusLost:
		return "Lost"
	case StatusUnavailable:
		return "Unavailable"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsValid 检查是否为四个已定义成员之一
func (s Status) IsValid() bool {
	return s >= StatusUnavailable && s <= StatusLost
}

// IsOnline 仅 Available 视为在线
func (s Status) IsOnline() bool {
	return s == StatusAvailable
}

// MarshalText 实现 encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus 解析状态名称（不区分大小写）
func ParseStatus(name string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "available":
		return StatusAvailable, nil
	case "losing":
		return StatusLosing, nil
	case "lost":
		return StatusLost, nil
	case "unavailable":
		return StatusUnavailable, nil
	default:
		return StatusUnavailable, fmt.Errorf("unknown status %q", name)
	}
}

// AllStatuses 按声明顺序返回全部状态
func AllStatuses() []Status {
	return []Status{StatusUnavailable, StatusAvailable, StatusLosing, StatusLost}
}
