package ssl

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yly97/sslclient/pkg/arena"
)

// serveTLS 在conn上运行一个TLS 1.2服务端，读到请求后返回reply并发送close_notify
func serveTLS(conn net.Conn, cert tls.Certificate, reply string) <-chan error {
	done := make(chan error, 1)
	go func() {
		srv := tls.Server(conn, &tls.Config{
			Certificates: []tls.Certificate{cert},
			// net.Pipe没有缓冲，TLS 1.3服务端首个flight中的session ticket会阻塞写
			MaxVersion: tls.VersionTLS12,
		})
		defer conn.Close()
		if err := srv.Handshake(); err != nil {
			done <- err
			return
		}
		buf := make([]byte, 512)
		if _, err := srv.Read(buf); err != nil {
			done <- err
			return
		}
		if _, err := srv.Write([]byte(reply)); err != nil {
			done <- err
			return
		}
		done <- srv.Close()
	}()
	return done
}

func TestSessionRoundTrip(t *testing.T) {
	cert, roots := newTestCertificate(t)
	general := arena.New(arena.DefaultGeneralSize, arena.TrackStats)
	ioPool := arena.New(arena.DefaultIOSize, arena.IOPoolFixed|arena.TrackStats)

	ctx, err := NewStaticContext(TLSv12ClientMethod(), general)
	require.NoError(t, err)
	require.NoError(t, ctx.LoadIOPool(ioPool))
	ctx.SetRootCAs(roots)
	ctx.SetServerName(testServerName)

	client, server := net.Pipe()
	defer client.Close()
	done := serveTLS(server, cert, "hello")

	sess := newTestSession(t, ctx, client)
	require.Equal(t, Success, sess.Connect(), "connect: %v", sess.Err())
	assert.Equal(t, 2*arena.IOBlockSize, ioPool.InUse())

	req := []byte("GET / HTTP/1.0\r\n\r\n")
	assert.Equal(t, len(req), sess.Write(req))

	buf := make([]byte, 64)
	n := sess.Read(buf)
	require.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf[:n]))

	assert.Equal(t, 0, sess.Read(buf))
	assert.Equal(t, ErrZeroReturn, sess.LastError())
	require.NoError(t, <-done)

	sess.Free()
	sess.Free()
	assert.True(t, sess.Freed())
	assert.Equal(t, 0, ioPool.InUse())
	assert.Equal(t, contextFootprint, general.InUse())

	ctx.Free()
	assert.True(t, ctx.Freed())
	assert.Equal(t, 0, general.InUse())
}

func TestSessionVerifyFailures(t *testing.T) {
	cert, roots := newTestCertificate(t)

	tests := []struct {
		name       string
		roots      *x509.CertPool
		serverName string
		want       ErrorCode
	}{
		{"unknown authority", x509.NewCertPool(), testServerName, ErrNoSigner},
		{"name mismatch", roots, "other.test", ErrDomainNameMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContext(TLSv12ClientMethod())
			require.NoError(t, err)
			defer ctx.Free()
			ctx.SetRootCAs(tt.roots)
			ctx.SetServerName(tt.serverName)

			client, server := net.Pipe()
			defer client.Close()
			done := serveTLS(server, cert, "")

			sess := newTestSession(t, ctx, client)
			defer sess.Free()
			assert.Equal(t, FatalError, sess.Connect())
			assert.Equal(t, tt.want, sess.LastError())
			assert.Error(t, <-done)

			// 出错后的会话不能再读写
			assert.Equal(t, FatalError, sess.Write([]byte("x")))
		})
	}
}

func TestSessionVerifyNone(t *testing.T) {
	cert, _ := newTestCertificate(t)
	ctx, err := NewContext(TLSClientMethod())
	require.NoError(t, err)
	defer ctx.Free()
	ctx.SetVerify(VerifyNone)
	ctx.SetServerName("whatever.invalid")

	client, server := net.Pipe()
	defer client.Close()
	done := serveTLS(server, cert, "ok")

	sess := newTestSession(t, ctx, client)
	defer sess.Free()
	require.Equal(t, Success, sess.Connect(), "connect: %v", sess.Err())
	assert.Equal(t, Success, sess.Connect(), "second connect is a no-op")
	assert.Greater(t, sess.Write([]byte("ping")), 0)
	buf := make([]byte, 16)
	assert.Equal(t, 2, sess.Read(buf))
	assert.Equal(t, 0, sess.Read(buf))
	require.NoError(t, <-done)
}

func TestSessionPeerClosed(t *testing.T) {
	ctx, err := NewContext(TLSv12ClientMethod())
	require.NoError(t, err)
	defer ctx.Free()
	ctx.SetVerify(VerifyNone)

	client, server := net.Pipe()
	defer client.Close()
	go func() {
		buf := make([]byte, 4096)
		_, _ = server.Read(buf)
		server.Close()
	}()

	sess := newTestSession(t, ctx, client)
	defer sess.Free()
	assert.Equal(t, FatalError, sess.Connect())
	assert.Equal(t, ErrSocketPeerClosed, sess.LastError())
	var ioErr *IOError
	assert.ErrorAs(t, sess.Err(), &ioErr)
}

func TestSessionReadPeerClosedTransport(t *testing.T) {
	cert, roots := newTestCertificate(t)
	ctx, err := NewContext(TLSv12ClientMethod())
	require.NoError(t, err)
	defer ctx.Free()
	ctx.SetRootCAs(roots)
	ctx.SetServerName(testServerName)

	client, server := net.Pipe()
	defer client.Close()
	go func() {
		// 写完响应后直接关闭底层连接，不发送close_notify
		srv := tls.Server(server, &tls.Config{Certificates: []tls.Certificate{cert}, MaxVersion: tls.VersionTLS12})
		buf := make([]byte, 1024)
		if _, err := srv.Read(buf); err == nil {
			_, _ = srv.Write([]byte("hello"))
		}
		server.Close()
	}()

	sess := newTestSession(t, ctx, client)
	defer sess.Free()
	require.Equal(t, Success, sess.Connect(), "connect: %v", sess.Err())
	require.Greater(t, sess.Write([]byte("GET / HTTP/1.0\r\n\r\n")), 0)

	buf := make([]byte, 64)
	require.Equal(t, 5, sess.Read(buf))
	assert.Equal(t, 0, sess.Read(buf))
	assert.Equal(t, ErrSocketPeerClosed, sess.LastError())
}

func TestSessionNotTLS(t *testing.T) {
	ctx, err := NewContext(TLSv12ClientMethod())
	require.NoError(t, err)
	defer ctx.Free()
	ctx.SetVerify(VerifyNone)

	client, server := net.Pipe()
	defer client.Close()
	go func() {
		defer server.Close()
		buf := make([]byte, 4096)
		_, _ = server.Read(buf)
		_, _ = server.Write([]byte("HTTP/1.0 400 Bad Request\r\n\r\n"))
	}()

	sess := newTestSession(t, ctx, client)
	defer sess.Free()
	assert.Equal(t, FatalError, sess.Connect())
	assert.Equal(t, ErrUnknownRecord, sess.LastError())
	assert.NotEmpty(t, sess.LastError().String())
}

func TestSessionTimeout(t *testing.T) {
	ctx, err := NewContext(TLSv12ClientMethod())
	require.NoError(t, err)
	defer ctx.Free()
	ctx.SetVerify(VerifyNone)
	ctx.SetHandshakeTimeout(50 * time.Millisecond)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	go func() {
		// 只读不写，客户端一直等不到ServerHello
		_, _ = io.Copy(io.Discard, server)
	}()

	sess := newTestSession(t, ctx, client)
	defer sess.Free()
	assert.Equal(t, FatalError, sess.Connect())
	assert.Equal(t, ErrTimeout, sess.LastError())
}

func TestSessionWithoutTransport(t *testing.T) {
	ctx, err := NewContext(TLSv12ClientMethod())
	require.NoError(t, err)
	defer ctx.Free()

	sess, err := ctx.NewSession()
	require.NoError(t, err)
	defer sess.Free()
	assert.Equal(t, FatalError, sess.Connect())
	assert.Equal(t, ErrBadFuncArg, sess.LastError())
	assert.Equal(t, FatalError, sess.Read(make([]byte, 4)))
}

func TestSessionFreedContext(t *testing.T) {
	ctx, err := NewContext(TLSv12ClientMethod())
	require.NoError(t, err)
	ctx.Free()
	ctx.Free()

	_, err = ctx.NewSession()
	assert.ErrorIs(t, err, errContextFreed)
}
