package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

// ContextDialer 建立底层连接，proxy.Dialer和net.Dialer都可以适配
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Socket 阻塞式的流/数据报套接字，Connect成功后才能收发
type Socket struct {
	network string
	dialer  ContextDialer
	logger  *log.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewSocket 创建未连接的套接字，dialer为nil时直接连接
func NewSocket(network string, dialer ContextDialer) *Socket {
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	return &Socket{
		network: network,
		dialer:  dialer,
		logger:  log.StandardLogger(),
	}
}

// SetLogger logger为nil时使用logrus的标准logger
func (s *Socket) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s.logger = logger
}

// Wrap 用一个已经建立的连接构造套接字
func Wrap(conn net.Conn) *Socket {
	return &Socket{
		network: conn.RemoteAddr().Network(),
		logger:  log.StandardLogger(),
		conn:    conn,
	}
}

// Connect 连接到host:port，失败后可以再次调用
func (s *Socket) Connect(ctx context.Context, host string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %d", errInvalidPort, port)
	}
	s.mu.Lock()
	if s.conn != nil && !s.closed {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()

	address := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := s.dialer.DialContext(ctx, s.network, address)
	if err != nil {
		return err
	}
	s.logger.Debugf("socket connected: %s %s -> %s", s.network, conn.LocalAddr(), conn.RemoteAddr())

	s.mu.Lock()
	s.conn, s.closed = conn, false
	s.mu.Unlock()
	return nil
}

// Send 发送b，返回发送的字节数
func (s *Socket) Send(b []byte) (int, error) {
	conn, err := s.current()
	if err != nil {
		return 0, err
	}
	return conn.Write(b)
}

// Receive 阻塞直到收到数据、出错或者超时
func (s *Socket) Receive(b []byte) (int, error) {
	conn, err := s.current()
	if err != nil {
		return 0, err
	}
	return conn.Read(b)
}

// Close 关闭连接，重复调用返回ErrNotConnected
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return ErrNotConnected
	}
	s.closed = true
	return s.conn.Close()
}

// Connected 是否处于已连接状态
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && !s.closed
}

func (s *Socket) Network() string {
	return s.network
}

func (s *Socket) LocalAddr() net.Addr {
	if conn, err := s.current(); err == nil {
		return conn.LocalAddr()
	}
	return nil
}

func (s *Socket) RemoteAddr() net.Addr {
	if conn, err := s.current(); err == nil {
		return conn.RemoteAddr()
	}
	return nil
}

func (s *Socket) SetReadDeadline(t time.Time) error {
	conn, err := s.current()
	if err != nil {
		return err
	}
	return conn.SetReadDeadline(t)
}

func (s *Socket) SetWriteDeadline(t time.Time) error {
	conn, err := s.current()
	if err != nil {
		return err
	}
	return conn.SetWriteDeadline(t)
}

func (s *Socket) current() (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return nil, ErrNotConnected
	}
	return s.conn, nil
}

// NewDialer 返回连接目标服务器使用的dialer，proxyAddr非空时经过SOCKS5代理，
// 代理只支持tcp
func NewDialer(network, proxyAddr string, timeout time.Duration) (ContextDialer, error) {
	direct := &net.Dialer{Timeout: timeout}
	if proxyAddr == "" {
		return direct, nil
	}
	if network != "tcp" {
		return nil, errProxyDatagram
	}
	d, err := proxy.SOCKS5("tcp", proxyAddr, nil, direct)
	if err != nil {
		return nil, err
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer %T has no DialContext", d)
	}
	return cd, nil
}
