package netif

import (
	"net"
	"time"
)

// Interface 网络接口的初始化和连接，DHCP调用Init，静态地址调用InitStatic
type Interface interface {
	Init() error
	InitStatic(ip, mask, gateway string) error
	Connect(timeout time.Duration) error
	MACAddress() string
	IPAddress() string
	NetworkMask() string
	Gateway() string
}

// defaultMAC 板子的固定MAC地址
var defaultMAC = [6]byte{0x00, 0x02, 0xF7, 0xF0, 0x00, 0x00}

// DefaultMAC 返回编译时确定的MAC地址
func DefaultMAC() net.HardwareAddr {
	mac := defaultMAC
	return net.HardwareAddr(mac[:])
}
