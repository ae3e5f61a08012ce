package ssl

import (
	"net"
	"time"
)

// Transport 会话的底层传输，Send和Receive都是阻塞调用
type Transport interface {
	Send(b []byte) (int, error)
	Receive(b []byte) (int, error)
}

// IOSendFunc 发送回调，t为会话绑定的写上下文
type IOSendFunc func(t Transport, b []byte) (int, error)

// IORecvFunc 接收回调，t为会话绑定的读上下文
type IORecvFunc func(t Transport, b []byte) (int, error)

type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

type addresser interface {
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// callbackConn 把回调函数包装成net.Conn交给TLS实现，本身不做任何缓冲。
// 传输的生命周期由调用者管理，Close只通过deadline中断阻塞中的读写
type callbackConn struct {
	send    IOSendFunc
	recv    IORecvFunc
	readCtx Transport
	writeTo Transport
	tracer  recordTracer
}

func (c *callbackConn) Read(b []byte) (int, error) {
	n, err := c.recv(c.readCtx, b)
	if err != nil {
		return n, &IOError{Op: "receive", Err: err}
	}
	c.tracer.trace(dirRecv, b[:n])
	return n, nil
}

func (c *callbackConn) Write(b []byte) (int, error) {
	c.tracer.trace(dirSend, b)
	n, err := c.send(c.writeTo, b)
	if err != nil {
		return n, &IOError{Op: "send", Err: err}
	}
	if n < len(b) {
		return n, &IOError{Op: "send", Err: errShortWrite}
	}
	return n, nil
}

func (c *callbackConn) Close() error {
	_ = c.SetDeadline(time.Now())
	return nil
}

func (c *callbackConn) LocalAddr() net.Addr {
	if a, ok := c.writeTo.(addresser); ok {
		return a.LocalAddr()
	}
	return callbackAddr{}
}

func (c *callbackConn) RemoteAddr() net.Addr {
	if a, ok := c.writeTo.(addresser); ok {
		return a.RemoteAddr()
	}
	return callbackAddr{}
}

func (c *callbackConn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}

func (c *callbackConn) SetReadDeadline(t time.Time) error {
	if d, ok := c.readCtx.(deadliner); ok {
		return d.SetReadDeadline(t)
	}
	return nil
}

func (c *callbackConn) SetWriteDeadline(t time.Time) error {
	if d, ok := c.writeTo.(deadliner); ok {
		return d.SetWriteDeadline(t)
	}
	return nil
}

type callbackAddr struct{}

func (callbackAddr) Network() string { return "callback" }
func (callbackAddr) String() string  { return "callback" }

var noDeadline time.Time
