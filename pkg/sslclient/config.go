package sslclient

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yly97/sslclient/pkg/arena"
	"github.com/yly97/sslclient/pkg/netif"
	"github.com/yly97/sslclient/pkg/ssl"
	"gopkg.in/yaml.v2"
)

const (
	DefaultServer  = "os.mbed.com"
	DefaultPort    = 443
	DefaultRequest = "GET /media/uploads/mbed_official/hello.txt HTTP/1.0\r\nhost: os.mbed.com\r\n\r\n"
)

const (
	NetworkEthernet = "ethernet"
	NetworkWLAN     = "wlan"
)

// Config 程序的全部配置，从yaml文件加载，未出现的字段保留DefaultConfig中的值
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Network NetworkConfig `yaml:"network"`
	Memory  MemoryConfig  `yaml:"memory"`
	Server  ServerConfig  `yaml:"server"`
	TLS     TLSConfig     `yaml:"tls"`
	LED     LEDConfig     `yaml:"led"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// NetworkConfig 网络接口设置，DHCP为false时使用IP、Mask和Gateway
type NetworkConfig struct {
	Type           string        `yaml:"type"`
	Interface      string        `yaml:"interface"`
	MAC            string        `yaml:"mac"`
	DHCP           bool          `yaml:"dhcp"`
	IP             string        `yaml:"ip"`
	Mask           string        `yaml:"mask"`
	Gateway        string        `yaml:"gateway"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	SettleDelay    time.Duration `yaml:"settleDelay"`
	WLAN           WLANConfig    `yaml:"wlan"`
}

type WLANConfig struct {
	SSID     string `yaml:"ssid"`
	PSK      string `yaml:"psk"`
	Security string `yaml:"security"`
}

// MemoryConfig 静态内存池，Static为false时使用Go堆
type MemoryConfig struct {
	Static  bool `yaml:"static"`
	General int  `yaml:"general"`
	IO      int  `yaml:"io"`
}

type ServerConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Request     string        `yaml:"request"`
	Proxy       string        `yaml:"proxy"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
}

// TLSConfig ServerName为空时使用Server.Host
type TLSConfig struct {
	Method           string        `yaml:"method"`
	Verify           string        `yaml:"verify"`
	RootCA           string        `yaml:"rootCA"`
	ServerName       string        `yaml:"serverName"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
}

type LEDConfig struct {
	Period time.Duration `yaml:"period"`
}

// MetricsConfig Listen为空时不启动指标服务
type MetricsConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Network: NetworkConfig{
			Type:           NetworkEthernet,
			DHCP:           true,
			ConnectTimeout: 5 * time.Second,
			SettleDelay:    3 * time.Second,
		},
		Memory: MemoryConfig{
			Static:  true,
			General: arena.DefaultGeneralSize,
			IO:      arena.DefaultIOSize,
		},
		Server: ServerConfig{
			Host:        DefaultServer,
			Port:        DefaultPort,
			Request:     DefaultRequest,
			DialTimeout: 10 * time.Second,
			RetryDelay:  time.Second,
		},
		TLS: TLSConfig{
			Method:           "tlsv1.2",
			Verify:           "peer",
			HandshakeTimeout: 30 * time.Second,
		},
		LED:     LEDConfig{Period: time.Second},
		Metrics: MetricsConfig{Path: "/metrics"},
	}
}

// LoadConfig 读取yaml配置文件并校验
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置是否完整
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	switch c.Network.Type {
	case NetworkEthernet:
	case NetworkWLAN:
		if _, err := netif.ParseSecurity(c.Network.WLAN.Security); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", errInvalidNetworkType, c.Network.Type)
	}
	if !c.Network.DHCP && (c.Network.IP == "" || c.Network.Mask == "" || c.Network.Gateway == "") {
		return errStaticAddress
	}
	if c.Network.MAC != "" {
		if _, err := net.ParseMAC(c.Network.MAC); err != nil {
			return err
		}
	}

	if c.Memory.Static && (c.Memory.General <= 0 || c.Memory.IO <= 0) {
		return errPoolSize
	}

	if c.Server.Host == "" {
		return errNoServer
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", errInvalidPort, c.Server.Port)
	}
	if c.Server.Request == "" {
		return errNoRequest
	}

	if _, err := ssl.ParseMethod(c.TLS.Method); err != nil {
		return err
	}
	if _, err := ssl.ParseVerifyMode(c.TLS.Verify); err != nil {
		return err
	}

	if c.LED.Period <= 0 {
		return errLEDPeriod
	}

	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			return fmt.Errorf("metrics listen: %w", err)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("%w: %q", errMetricsPath, c.Metrics.Path)
		}
	}
	return nil
}

// ServerName 证书验证和SNI使用的主机名
func (c *Config) ServerName() string {
	if c.TLS.ServerName != "" {
		return c.TLS.ServerName
	}
	return c.Server.Host
}
