package netif

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"

	psnet "github.com/shirou/gopsutil/net"
)

// Link 主机上的一个网络链路
type Link struct {
	Name     string
	MAC      net.HardwareAddr
	Up       bool
	Loopback bool
	Addrs    []netip.Prefix
}

// IPv4 返回链路上第一个IPv4地址
func (l *Link) IPv4() (netip.Prefix, bool) {
	for _, p := range l.Addrs {
		if p.Addr().Is4() {
			return p, true
		}
	}
	return netip.Prefix{}, false
}

// LinkSource 枚举可用链路
type LinkSource func() ([]Link, error)

// HostLinks 从操作系统读取链路信息
func HostLinks() ([]Link, error) {
	stats, err := psnet.Interfaces()
	if err != nil {
		return nil, err
	}
	return linksFromStats(stats), nil
}

// linksFromStats 转换gopsutil的接口信息，无法解析的地址被忽略
func linksFromStats(stats []psnet.InterfaceStat) []Link {
	links := make([]Link, 0, len(stats))
	for _, st := range stats {
		link := Link{Name: st.Name}
		if st.HardwareAddr != "" {
			if mac, err := net.ParseMAC(st.HardwareAddr); err == nil {
				link.MAC = mac
			}
		}
		for _, f := range st.Flags {
			switch f {
			case "up":
				link.Up = true
			case "loopback":
				link.Loopback = true
			}
		}
		for _, a := range st.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil {
				continue
			}
			link.Addrs = append(link.Addrs, netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()))
		}
		links = append(links, link)
	}
	return links
}

// selectLink name非空时按名字查找，否则返回第一个启用的非回环链路
func selectLink(links []Link, name string) (*Link, error) {
	for i := range links {
		l := &links[i]
		if name != "" {
			if l.Name == name {
				return l, nil
			}
			continue
		}
		if l.Up && !l.Loopback {
			return l, nil
		}
	}
	return nil, errNoLink
}

// GatewayLookup 查询链路的默认网关
type GatewayLookup func(iface string) (netip.Addr, error)

// HostGateway 从/proc/net/route中读取默认网关（Linux）
func HostGateway(iface string) (netip.Addr, error) {
	f, err := os.Open("/proc/net/route")
	if err != nil {
		return netip.Addr{}, err
	}
	defer f.Close()
	return parseRoutes(f, iface)
}

// parseRoutes 解析/proc/net/route格式，地址字段是小端序的十六进制
func parseRoutes(r io.Reader, iface string) (netip.Addr, error) {
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || fields[0] != iface || fields[1] != "00000000" {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			continue
		}
		var ip [4]byte
		binary.BigEndian.PutUint32(ip[:], binary.LittleEndian.Uint32(raw))
		return netip.AddrFrom4(ip), nil
	}
	if err := sc.Err(); err != nil {
		return netip.Addr{}, err
	}
	return netip.Addr{}, errNoDefaultRoute
}
