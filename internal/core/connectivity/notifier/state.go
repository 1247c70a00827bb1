package notifier

import (
	"net"
	"sort"

	"github.com/dep2p/go-netstatus/pkg/interfaces"
)

// ============================================================================
// 网络状态读取
// ============================================================================

// StateReader 读取网络状态快照
type StateReader interface {
	ReadState() (interfaces.NetworkState, error)
}

// StateReaderFunc 函数适配器
type StateReaderFunc func() (interfaces.NetworkState, error)

// ReadState 实现 StateReader
func (f StateReaderFunc) ReadState() (interfaces.NetworkState, error) {
	return f()
}

// InterfaceStateReader 返回基于 net.Interfaces 的状态读取器
func InterfaceStateReader() StateReader {
	return StateReaderFunc(readInterfaceState)
}

// readInterfaceState 读取本机网络接口
//
// 只保留启用且有地址的接口；第一个非回环接口为首选接口，
// 存在首选接口即视为在线。
func readInterfaceState() (interfaces.NetworkState, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return interfaces.NetworkState{}, err
	}

	state := interfaces.NetworkState{
		Interfaces: make([]interfaces.NetworkInterface, 0, len(ifaces)),
	}

	for _, iface := range ifaces {
		// 跳过未启用的接口
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}

		addrStrs := make([]string, 0, len(addrs))
		for _, addr := range addrs {
			addrStrs = append(addrStrs, addr.String())
		}

		ni := interfaces.NetworkInterface{
			Name:       iface.Name,
			Addrs:      addrStrs,
			IsUp:       true,
			IsLoopback: iface.Flags&net.FlagLoopback != 0,
		}
		state.Interfaces = append(state.Interfaces, ni)

		if !ni.IsLoopback && state.PreferredInterface == "" {
			state.PreferredInterface = ni.Name
			state.IsOnline = true
		}
	}

	return state, nil
}

// hasChanged 检查接口集合或地址是否发生变化
func hasChanged(old, new interfaces.NetworkState) bool {
	if old.IsOnline != new.IsOnline || old.PreferredInterface != new.PreferredInterface {
		return true
	}
	if len(old.Interfaces) != len(new.Interfaces) {
		return true
	}

	oldNames := make(map[string]bool, len(old.Interfaces))
	for _, iface := range old.Interfaces {
		oldNames[iface.Name] = true
	}
	for _, iface := range new.Interfaces {
		if !oldNames[iface.Name] {
			return true
		}
	}

	return !equalAddrs(extractAddrs(old.Interfaces), extractAddrs(new.Interfaces))
}

func extractAddrs(ifaces []interfaces.NetworkInterface) []string {
	var addrs []string
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			addrs = append(addrs, iface.Name+"/"+addr)
		}
	}
	sort.Strings(addrs)
	return addrs
}

func equalAddrs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
