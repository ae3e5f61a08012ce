package sslclient

import (
	"context"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/yly97/sslclient/pkg/netif"
	"github.com/yly97/sslclient/pkg/ssl"
	"github.com/yly97/sslclient/pkg/transport"
)

// Socket 任务使用的传输套接字
type Socket interface {
	ssl.Transport
	Connect(ctx context.Context, host string, port int) error
	Close() error
}

var _ Socket = (*transport.Socket)(nil)

// Task 按固定顺序执行：网络初始化、连接服务器、TLS会话、关闭连接
type Task struct {
	cfg     *Config
	network netif.Interface
	socket  Socket
	logger  *log.Logger

	security func(ctx context.Context, sock ssl.Transport) int
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewTask clk为nil时使用系统时钟
func NewTask(cfg *Config, network netif.Interface, socket Socket, client *Client, clk clock.Clock) *Task {
	if clk == nil {
		clk = clock.New()
	}
	return &Task{
		cfg:      cfg,
		network:  network,
		socket:   socket,
		logger:   client.logger,
		security: client.Security,
		sleep: func(ctx context.Context, d time.Duration) error {
			return sleepContext(ctx, clk, d)
		},
	}
}

// Run 执行一次完整流程，返回Security的结果。
// 只有ctx结束时才会提前退出重试循环
func (t *Task) Run(ctx context.Context) int {
	if level, err := log.ParseLevel(t.cfg.Log.Level); err == nil {
		t.logger.SetLevel(level)
	}

	t.logger.Info("sslClient:")
	t.logger.Info("Sample program starts.")
	t.logger.Info("Network Setting up...")

	if err := t.initNetwork(); err != nil {
		t.logger.Infof("Network Initialize Error: %v", err)
		return ExitFailure
	}
	t.logger.Info("Network was initialized successfully")

	for {
		if ctx.Err() != nil {
			return ExitFailure
		}
		err := t.network.Connect(t.cfg.Network.ConnectTimeout)
		if err == nil {
			break
		}
		t.logger.Infof("Network Connect Error: %v", err)
	}

	if t.sleep(ctx, t.cfg.Network.SettleDelay) != nil {
		return ExitFailure
	}

	t.logger.Infof("MAC Address is %s", t.network.MACAddress())
	t.logger.Infof("IP Address is %s", t.network.IPAddress())
	t.logger.Infof("NetMask is %s", t.network.NetworkMask())
	t.logger.Infof("Gateway Address is %s", t.network.Gateway())
	t.logger.Info("Network Setup OK...")

	host, port := t.cfg.Server.Host, t.cfg.Server.Port
	for {
		err := t.socket.Connect(ctx, host, port)
		if err == nil {
			break
		}
		t.logger.Errorf("Unable to connect to (%s) on port (%d)", host, port)
		t.logger.Debugf("connect error: %v", err)
		if t.sleep(ctx, t.cfg.Server.RetryDelay) != nil {
			return ExitFailure
		}
	}

	ret := t.security(ctx, t.socket)
	if err := t.socket.Close(); err != nil {
		t.logger.Debugf("socket close error: %v", err)
	}
	t.logger.Info("program end")
	return ret
}

func (t *Task) initNetwork() error {
	n := t.cfg.Network
	if n.DHCP {
		return t.network.Init()
	}
	return t.network.InitStatic(n.IP, n.Mask, n.Gateway)
}

func sleepContext(ctx context.Context, clk clock.Clock, d time.Duration) error {
	timer := clk.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewNetwork 按配置创建网络接口，接口的日志写到logger
func NewNetwork(cfg NetworkConfig, logger *log.Logger) (netif.Interface, error) {
	ecfg := netif.EthernetConfig{Interface: cfg.Interface, Logger: logger}
	if cfg.MAC != "" {
		mac, err := net.ParseMAC(cfg.MAC)
		if err != nil {
			return nil, err
		}
		ecfg.MAC = mac
	}
	eth := netif.NewEthernet(ecfg)

	switch cfg.Type {
	case NetworkEthernet, "":
		return eth, nil
	case NetworkWLAN:
		sec, err := netif.ParseSecurity(cfg.WLAN.Security)
		if err != nil {
			return nil, err
		}
		return netif.NewWLAN(eth, cfg.WLAN.SSID, cfg.WLAN.PSK, sec), nil
	default:
		return nil, errInvalidNetworkType
	}
}

// NewSocket 按配置创建套接字，DTLS使用udp
func NewSocket(cfg ServerConfig, method ssl.Method, logger *log.Logger) (*transport.Socket, error) {
	network := "tcp"
	if method.Datagram() {
		network = "udp"
	}
	dialer, err := transport.NewDialer(network, cfg.Proxy, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	sock := transport.NewSocket(network, dialer)
	sock.SetLogger(logger)
	return sock, nil
}
