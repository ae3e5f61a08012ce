package ssl

import (
	"crypto/x509"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yly97/sslclient/pkg/arena"
)

const (
	contextFootprint = 4 * 1024
	sessionFootprint = 48 * 1024

	defaultHandshakeTimeout = 30 * time.Second
)

// Context 会话共享的配置：协议方法、内存池、I/O回调和证书验证方式
type Context struct {
	method Method
	heap   *arena.Arena // nil表示使用Go堆
	io     *arena.Arena
	self   []byte // 从heap中为Context本身划出的区域

	send IOSendFunc
	recv IORecvFunc

	verify           VerifyMode
	rootCAs          *x509.CertPool
	serverName       string
	handshakeTimeout time.Duration
	logger           *log.Logger

	sessions int
	freed    bool
}

// NewContext 创建使用Go堆内存的Context
func NewContext(method Method) (*Context, error) {
	if !method.valid() {
		return nil, errInvalidMethod
	}
	return newContext(method, nil, nil), nil
}

// NewStaticContext 从通用内存池中创建Context，之后创建的会话也从这个池中分配，
// 会话期间不再向堆申请内存
func NewStaticContext(method Method, general *arena.Arena) (*Context, error) {
	if !method.valid() {
		return nil, errInvalidMethod
	}
	self, err := general.Alloc(contextFootprint)
	if err != nil {
		return nil, err
	}
	return newContext(method, general, self), nil
}

func newContext(method Method, heap *arena.Arena, self []byte) *Context {
	return &Context{
		method:           method,
		heap:             heap,
		self:             self,
		handshakeTimeout: defaultHandshakeTimeout,
		logger:           log.StandardLogger(),
	}
}

// LoadIOPool 为Context加载I/O内存池，必须是IOPoolFixed类型
func (c *Context) LoadIOPool(io *arena.Arena) error {
	if c.freed {
		return errContextFreed
	}
	if !io.Fixed() {
		return errNotIOPool
	}
	c.io = io
	return nil
}

func (c *Context) Method() Method {
	return c.method
}

// Static 是否使用静态内存池
func (c *Context) Static() bool {
	return c.heap != nil
}

func (c *Context) SetIOSend(fn IOSendFunc) {
	c.send = fn
}

func (c *Context) SetIORecv(fn IORecvFunc) {
	c.recv = fn
}

// SetVerify 设置对端证书验证方式，默认VerifyPeer
func (c *Context) SetVerify(mode VerifyMode) {
	c.verify = mode
}

func (c *Context) Verify() VerifyMode {
	return c.verify
}

// SetRootCAs 验证对端证书使用的根证书，nil时使用系统根证书
func (c *Context) SetRootCAs(pool *x509.CertPool) {
	c.rootCAs = pool
}

// SetServerName 设置SNI以及证书验证时使用的主机名
func (c *Context) SetServerName(name string) {
	c.serverName = name
}

func (c *Context) SetHandshakeTimeout(d time.Duration) {
	if d <= 0 {
		d = defaultHandshakeTimeout
	}
	c.handshakeTimeout = d
}

// SetLogger Context及其会话的日志、记录跟踪和pion/dtls使用的logger，默认是logrus的标准logger
func (c *Context) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	c.logger = logger
}

// NewSession 从Context创建一个会话，静态内存模式下会话本身和两块I/O缓冲都从内存池中分配
func (c *Context) NewSession() (*Session, error) {
	if c.freed {
		return nil, errContextFreed
	}
	s := &Session{ctx: c}
	var err error
	if s.mem, err = c.alloc(sessionFootprint); err != nil {
		return nil, err
	}
	if s.in, err = c.allocIO(arena.IOBlockSize); err != nil {
		c.release(s.mem)
		return nil, err
	}
	if s.out, err = c.allocIO(arena.IOBlockSize); err != nil {
		c.releaseIO(s.in)
		c.release(s.mem)
		return nil, err
	}
	c.sessions++
	return s, nil
}

// Free 释放Context，重复调用无副作用
func (c *Context) Free() {
	if c.freed {
		return
	}
	c.release(c.self)
	c.self = nil
	c.freed = true
	c.logger.Debugf("ssl context freed: method=%s", c.method)
}

func (c *Context) Freed() bool {
	return c.freed
}

func (c *Context) alloc(n int) ([]byte, error) {
	if c.heap == nil {
		return make([]byte, n), nil
	}
	return c.heap.Alloc(n)
}

func (c *Context) release(b []byte) {
	if c.heap != nil && b != nil {
		_ = c.heap.Free(b)
	}
}

func (c *Context) allocIO(n int) ([]byte, error) {
	if c.io == nil {
		return c.alloc(n)
	}
	return c.io.Alloc(n)
}

func (c *Context) releaseIO(b []byte) {
	if b == nil {
		return
	}
	if c.io == nil {
		c.release(b)
		return
	}
	_ = c.io.Free(b)
}
