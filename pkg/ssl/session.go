package ssl

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/pion/dtls/v2"
)

type sessionState uint8

const (
	sessionNew sessionState = iota
	sessionConnected
	sessionErrored
	sessionFreed
)

func (s sessionState) String() string {
	switch s {
	case sessionNew:
		return "New"
	case sessionConnected:
		return "Connected"
	case sessionErrored:
		return "Errored"
	case sessionFreed:
		return "Freed"
	default:
		return "Unknown"
	}
}

// Session 绑定在一个传输连接上的TLS会话，非线程安全
type Session struct {
	ctx      *Context
	readCtx  Transport
	writeCtx Transport
	conn     net.Conn // *tls.Conn 或 *dtls.Conn
	state    sessionState

	mem     []byte // 会话本身占用的内存
	in, out []byte // I/O缓冲块

	err  error
	code ErrorCode
}

// SetIOReadCtx 设置接收回调使用的传输
func (s *Session) SetIOReadCtx(t Transport) {
	s.readCtx = t
}

// SetIOWriteCtx 设置发送回调使用的传输
func (s *Session) SetIOWriteCtx(t Transport) {
	s.writeCtx = t
}

// Connect 使用Context中设置的握手时限执行握手
func (s *Session) Connect() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.ctx.handshakeTimeout)
	defer cancel()
	return s.ConnectContext(ctx)
}

// ConnectContext 执行客户端握手，成功返回Success，失败返回FatalError，
// 具体错误通过LastError获取
func (s *Session) ConnectContext(ctx context.Context) int {
	switch s.state {
	case sessionConnected:
		return Success
	case sessionFreed:
		return s.fail(errSessionFreed)
	case sessionErrored:
		return FatalError
	}
	if s.readCtx == nil || s.writeCtx == nil || s.ctx.send == nil || s.ctx.recv == nil {
		return s.fail(errNoTransport)
	}
	if err := ctx.Err(); err != nil {
		return s.fail(err)
	}

	raw := &callbackConn{
		send:    s.ctx.send,
		recv:    s.ctx.recv,
		readCtx: s.readCtx,
		writeTo: s.writeCtx,
		tracer:  recordTracer{datagram: s.ctx.method.Datagram(), logger: s.ctx.logger},
	}
	// 底层传输支持超时时用deadline中断阻塞的读写
	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
		defer raw.SetDeadline(noDeadline)
	}

	s.ctx.logger.Debugf("[ssl] %s handshake starts, verify=%s", s.ctx.method, s.ctx.verify)
	var err error
	if s.ctx.method.Datagram() {
		s.conn, err = s.connectDTLS(ctx, raw)
	} else {
		s.conn, err = s.connectTLS(ctx, raw)
	}
	if err != nil {
		return s.fail(wrapAlert(err))
	}
	s.state = sessionConnected
	s.ctx.logger.Debugf("[ssl] %s handshake finished", s.ctx.method)
	return Success
}

func (s *Session) connectTLS(ctx context.Context, raw net.Conn) (net.Conn, error) {
	cfg := &tls.Config{
		ServerName:         s.ctx.serverName,
		MinVersion:         s.ctx.method.minVersion,
		MaxVersion:         s.ctx.method.maxVersion,
		InsecureSkipVerify: true, // 由VerifyPeerCertificate接管
	}
	if s.ctx.verify == VerifyPeer {
		cfg.VerifyPeerCertificate = s.verifier().verify
	}
	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Session) connectDTLS(ctx context.Context, raw net.Conn) (net.Conn, error) {
	cfg := &dtls.Config{
		ServerName:         s.ctx.serverName,
		InsecureSkipVerify: true,
		LoggerFactory:      newLoggerFactory(s.ctx.logger),
	}
	if s.ctx.verify == VerifyPeer {
		cfg.VerifyPeerCertificate = s.verifier().verify
	}
	conn, err := dtls.ClientWithContext(ctx, raw, cfg)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Session) verifier() *peerVerifier {
	return &peerVerifier{
		roots:      s.ctx.rootCAs,
		serverName: s.ctx.serverName,
		now:        timeNow,
	}
}

// Write 写入应用数据，返回写入的字节数，失败返回FatalError
func (s *Session) Write(b []byte) int {
	if s.state != sessionConnected {
		return s.fail(errNotConnected)
	}
	n, err := s.conn.Write(b)
	if err != nil {
		return s.fail(wrapAlert(err))
	}
	return n
}

// Read 读取应用数据：大于0为读到的字节数，0表示对端发送了close_notify或关闭了传输，
// FatalError表示出错。返回0时LastError区分ErrZeroReturn和ErrSocketPeerClosed
func (s *Session) Read(b []byte) int {
	if s.state != sessionConnected {
		return s.fail(errNotConnected)
	}
	n, err := s.conn.Read(b)
	if n > 0 {
		return n
	}
	if err == nil {
		return 0
	}
	switch code := classify(err); code {
	case ErrZeroReturn, ErrSocketPeerClosed:
		s.err, s.code = err, code
		return 0
	}
	return s.fail(wrapAlert(err))
}

// LastError 最近一次失败调用的错误码
func (s *Session) LastError() ErrorCode {
	return s.code
}

// Err 最近一次失败调用的原始错误
func (s *Session) Err() error {
	return s.err
}

// AllocIO 从I/O内存池中分配应用层缓冲
func (s *Session) AllocIO(n int) ([]byte, error) {
	if s.state == sessionFreed {
		return nil, errSessionFreed
	}
	return s.ctx.allocIO(n)
}

func (s *Session) FreeIO(b []byte) {
	s.ctx.releaseIO(b)
}

// Free 释放会话占用的内存，不会关闭底层传输，重复调用无副作用
func (s *Session) Free() {
	if s.state == sessionFreed {
		return
	}
	if dc, ok := s.conn.(*dtls.Conn); ok {
		// dtls.Conn内部有读协程，需要Close通知其退出
		_ = dc.Close()
	}
	s.conn = nil
	s.ctx.releaseIO(s.out)
	s.ctx.releaseIO(s.in)
	s.ctx.release(s.mem)
	s.in, s.out, s.mem = nil, nil, nil
	s.ctx.sessions--
	s.state = sessionFreed
	s.ctx.logger.Debug("[ssl] session freed")
}

func (s *Session) Freed() bool {
	return s.state == sessionFreed
}

func (s *Session) fail(err error) int {
	s.err = err
	s.code = classify(err)
	if s.state != sessionFreed {
		s.state = sessionErrored
	}
	return FatalError
}
