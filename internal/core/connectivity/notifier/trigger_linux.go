//go:build linux

package notifier

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// netlinkRecvTimeout 接收超时，用于周期性检查关闭标志
const netlinkRecvTimeout = 200 * time.Millisecond

// netlinkTrigger 订阅 NETLINK_ROUTE 的链路、地址和路由变化
type netlinkTrigger struct {
	fd     int
	c      chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
	once   sync.Once
}

// openTrigger 打开 netlink 路由事件源
func openTrigger() (trigger, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, fmt.Errorf("open netlink socket: %w", err)
	}

	sa := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: unix.RTMGRP_LINK |
			unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_IPV6_IFADDR |
			unix.RTMGRP_IPV4_ROUTE | unix.RTMGRP_IPV6_ROUTE,
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind netlink socket: %w", err)
	}

	tv := unix.NsecToTimeval(netlinkRecvTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set netlink receive timeout: %w", err)
	}

	t := &netlinkTrigger{
		fd: fd,
		c:  make(chan struct{}, 1),
	}
	t.wg.Add(1)
	go t.readLoop()
	return t, nil
}

// C 返回事件信号通道
func (t *netlinkTrigger) C() <-chan struct{} {
	return t.c
}

// Close 停止读取并关闭 socket
func (t *netlinkTrigger) Close() error {
	var err error
	t.once.Do(func() {
		t.closed.Store(true)
		t.wg.Wait()
		err = unix.Close(t.fd)
	})
	return err
}

func (t *netlinkTrigger) readLoop() {
	defer t.wg.Done()

	buf := make([]byte, unix.Getpagesize()*4)
	for !t.closed.Load() {
		n, _, err := unix.Recvfrom(t.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) ||
				errors.Is(err, unix.EINTR) || errors.Is(err, unix.ENOBUFS) {
				continue
			}
			logger.Warn("读取 netlink 事件失败，退回纯轮询", "error", err)
			return
		}

		if relevant(buf[:n]) {
			select {
			case t.c <- struct{}{}:
			default:
				// 已有待处理的信号
			}
		}
	}
}

// relevant 消息中是否包含链路、地址或路由变化
func relevant(b []byte) bool {
	msgs, err := syscall.ParseNetlinkMessage(b)
	if err != nil {
		// 无法解析时保守地触发一次检查
		return true
	}
	for _, m := range msgs {
		switch m.Header.Type {
		case unix.RTM_NEWLINK, unix.RTM_DELLINK,
			unix.RTM_NEWADDR, unix.RTM_DELADDR,
			unix.RTM_NEWROUTE, unix.RTM_DELROUTE:
			return true
		}
	}
	return false
}
