package sslclient

import (
	"context"
	"crypto/x509"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yly97/sslclient/pkg/arena"
	"github.com/yly97/sslclient/pkg/ssl"
)

// Client 在一个已连接的传输上建立TLS会话并完成一次HTTP请求
type Client struct {
	cfg     *Config
	method  ssl.Method
	verify  ssl.VerifyMode
	rootCAs *x509.CertPool
	logger  *log.Logger

	// 静态内存池，整个进程生命周期内只分配一次
	general *arena.Arena
	io      *arena.Arena

	greet   func(ch Channel, buf []byte) int
	metrics *Metrics
}

// NewClient rootCAs为nil时使用系统根证书
func NewClient(cfg *Config, rootCAs *x509.CertPool, logger *log.Logger) (*Client, error) {
	method, err := ssl.ParseMethod(cfg.TLS.Method)
	if err != nil {
		return nil, err
	}
	verify, err := ssl.ParseVerifyMode(cfg.TLS.Verify)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	c := &Client{
		cfg:     cfg,
		method:  method,
		verify:  verify,
		rootCAs: rootCAs,
		logger:  logger,
	}
	if cfg.Memory.Static {
		c.general = arena.New(cfg.Memory.General, 0)
		c.io = arena.New(cfg.Memory.IO, arena.IOPoolFixed|arena.TrackStats)
	}
	c.greet = c.ClientGreet
	return c, nil
}

func (c *Client) Method() ssl.Method {
	return c.method
}

// SetMetrics m为nil时不记录指标
func (c *Client) SetMetrics(m *Metrics) {
	c.metrics = m
}

// Pools 返回通用内存池和I/O内存池，非静态模式下为nil
func (c *Client) Pools() (general, io *arena.Arena) {
	return c.general, c.io
}

// Security 在sock上完成握手并执行ClientGreet。任何一步失败都返回ExitFailure，
// 会话、Context和库的全局状态在所有路径上都会被释放
func (c *Client) Security(ctx context.Context, sock ssl.Transport) int {
	if ssl.Init() != ssl.Success {
		c.logger.Error("ssl library init error")
		return ExitFailure
	}
	defer ssl.Cleanup()
	defer c.logPoolStats()

	sslCtx, err := c.newContext()
	if err != nil {
		return ExitFailure
	}
	defer sslCtx.Free()

	sslCtx.SetIORecv(SocketReceive)
	sslCtx.SetIOSend(SocketSend)
	sslCtx.SetVerify(c.verify)
	sslCtx.SetRootCAs(c.rootCAs)
	sslCtx.SetServerName(c.cfg.ServerName())
	sslCtx.SetHandshakeTimeout(c.cfg.TLS.HandshakeTimeout)
	sslCtx.SetLogger(c.logger)

	sess, err := sslCtx.NewSession()
	if err != nil {
		c.logger.Errorf("ssl session creation error: %v", err)
		return ExitFailure
	}
	defer sess.Free()

	sess.SetIOReadCtx(sock)
	sess.SetIOWriteCtx(sock)

	if d := c.cfg.TLS.HandshakeTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	start := time.Now()
	ret := sess.ConnectContext(ctx)
	c.metrics.observeHandshake(start, ret, sess.LastError())
	if ret != ssl.Success {
		code := sess.LastError()
		c.logger.Errorf("TLS Connect error[%d], %s", int(code), code)
		c.logger.Debugf("handshake error: %v", sess.Err())
		return ExitFailure
	}
	c.logger.Info("TLS Connected")

	buf, err := sess.AllocIO(MaxDataSize)
	if err != nil {
		c.logger.Errorf("unable to allocate receive buffer: %v", err)
		return ExitFailure
	}
	defer sess.FreeIO(buf)

	ret = c.greet(sess, buf)
	c.metrics.observeExchange(ret)
	return ret
}

// newContext 静态模式下从两个内存池创建Context，否则使用堆
func (c *Client) newContext() (*ssl.Context, error) {
	if c.general == nil {
		sslCtx, err := ssl.NewContext(c.method)
		if err != nil {
			c.logger.Errorf("ssl context creation error: %v", err)
			return nil, err
		}
		c.logger.Debugf("ssl context created: method=%s static=false", c.method)
		return sslCtx, nil
	}

	c.logger.Debug("load static memory")
	sslCtx, err := ssl.NewStaticContext(c.method, c.general)
	if err != nil {
		c.logger.Errorf("unable to load static memory and create ctx: %v", err)
		return nil, err
	}
	c.logger.Debug("load static memory for I/O")
	if err := sslCtx.LoadIOPool(c.io); err != nil {
		sslCtx.Free()
		c.logger.Errorf("unable to load static I/O memory: %v", err)
		return nil, err
	}
	c.logger.Debugf("ssl context created: method=%s static=true", c.method)
	return sslCtx, nil
}

func (c *Client) logPoolStats() {
	if c.io == nil {
		return
	}
	c.metrics.observePool("general", c.general)
	c.metrics.observePool("io", c.io)
	s := c.io.Stats()
	c.logger.Debugf("I/O pool: allocs=%d frees=%d failures=%d peak=%d in use=%d",
		s.TotalAllocs, s.TotalFrees, s.Failures, s.PeakBytes, s.CurrentBytes)
}
