package netif

import (
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

const defaultPollInterval = 500 * time.Millisecond

// EthernetConfig 以太网接口的可选参数，零值使用主机实现
type EthernetConfig struct {
	Interface    string
	MAC          net.HardwareAddr
	Links        LinkSource
	Gateway      GatewayLookup
	Frames       io.Writer
	PollInterval time.Duration
	Clock        clock.Clock
	Logger       *log.Logger
}

// Ethernet 基于主机链路的以太网接口
type Ethernet struct {
	name    string
	mac     net.HardwareAddr
	links   LinkSource
	gateway GatewayLookup
	frames  io.Writer
	poll    time.Duration
	clock   clock.Clock
	logger  *log.Logger

	inited bool
	dhcp   bool
	up     bool
	addr   netip.Prefix
	gw     netip.Addr
}

func NewEthernet(cfg EthernetConfig) *Ethernet {
	e := &Ethernet{
		name:    cfg.Interface,
		mac:     cfg.MAC,
		links:   cfg.Links,
		gateway: cfg.Gateway,
		frames:  cfg.Frames,
		poll:    cfg.PollInterval,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
	if e.logger == nil {
		e.logger = log.StandardLogger()
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.mac == nil {
		e.mac = DefaultMAC()
	}
	if e.links == nil {
		e.links = HostLinks
	}
	if e.gateway == nil {
		e.gateway = HostGateway
	}
	if e.poll <= 0 {
		e.poll = defaultPollInterval
	}
	return e
}

// Init DHCP模式
func (e *Ethernet) Init() error {
	e.inited, e.dhcp, e.up = true, true, false
	e.addr, e.gw = netip.Prefix{}, netip.Addr{}
	return nil
}

// InitStatic 静态地址模式，mask使用点分十进制
func (e *Ethernet) InitStatic(ip, mask, gateway string) error {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return fmt.Errorf("%w: %q", errInvalidIP, ip)
	}
	m, err := netip.ParseAddr(mask)
	if err != nil || !m.Is4() {
		return fmt.Errorf("%w: %q", errInvalidMask, mask)
	}
	raw := m.As4()
	bits, size := net.IPMask(raw[:]).Size()
	if size == 0 {
		return fmt.Errorf("%w: %q", errInvalidMask, mask)
	}
	gw, err := netip.ParseAddr(gateway)
	if err != nil || !gw.Is4() {
		return fmt.Errorf("%w: %q", errInvalidIP, gateway)
	}
	e.inited, e.dhcp, e.up = true, false, false
	e.addr = netip.PrefixFrom(addr, bits)
	e.gw = gw
	return nil
}

// Connect 等待链路就绪，DHCP模式下轮询直到获得IPv4地址或超时
func (e *Ethernet) Connect(timeout time.Duration) error {
	if !e.inited {
		return errNotInitialized
	}
	deadline := e.clock.Now().Add(timeout)
	for {
		link, err := e.link()
		if err != nil {
			return err
		}
		if !link.Up {
			return fmt.Errorf("%w: %s", errLinkDown, link.Name)
		}
		if !e.dhcp {
			return e.announce(link)
		}
		if prefix, ok := link.IPv4(); ok {
			e.addr = prefix
			gw, err := e.gateway(link.Name)
			if err != nil {
				e.logger.Debugf("no gateway for %s: %v", link.Name, err)
				gw = netip.Addr{}
			}
			e.gw = gw
			e.up = true
			e.logger.Debugf("DHCP lease on %s: %s", link.Name, prefix)
			return nil
		}
		if !e.clock.Now().Before(deadline) {
			return errDHCPTimeout
		}
		e.logger.Debug("DHCP ongoing...")
		e.clock.Sleep(e.poll)
	}
}

func (e *Ethernet) link() (*Link, error) {
	links, err := e.links()
	if err != nil {
		return nil, err
	}
	return selectLink(links, e.name)
}

func (e *Ethernet) announce(link *Link) error {
	if e.frames != nil {
		frame, err := GratuitousARP(e.mac, e.addr.Addr())
		if err != nil {
			return err
		}
		if _, err := e.frames.Write(frame); err != nil {
			return fmt.Errorf("announce %s: %w", e.addr.Addr(), err)
		}
	}
	e.up = true
	e.logger.Debugf("static address %s on %s", e.addr, link.Name)
	return nil
}

func (e *Ethernet) MACAddress() string {
	return e.mac.String()
}

func (e *Ethernet) IPAddress() string {
	if !e.up {
		return ""
	}
	return e.addr.Addr().String()
}

func (e *Ethernet) NetworkMask() string {
	if !e.up {
		return ""
	}
	return net.IP(net.CIDRMask(e.addr.Bits(), 32)).String()
}

func (e *Ethernet) Gateway() string {
	if !e.up || !e.gw.IsValid() {
		return ""
	}
	return e.gw.String()
}
