package ssl

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testServerName = "sslclient.test"

// connTransport 用net.Conn实现Transport
type connTransport struct {
	net.Conn
}

func (t connTransport) Send(b []byte) (int, error) {
	return t.Write(b)
}

func (t connTransport) Receive(b []byte) (int, error) {
	return t.Read(b)
}

func forwardSend(t Transport, b []byte) (int, error) {
	return t.Send(b)
}

func forwardRecv(t Transport, b []byte) (int, error) {
	return t.Receive(b)
}

// newTestCertificate 生成自签名的服务端证书以及只包含该证书的根证书池
func newTestCertificate(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: testServerName},
		DNSNames:              []string{testServerName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(cert)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: cert}, pool
}

// newTestSession 创建绑定在conn上的会话
func newTestSession(t *testing.T, ctx *Context, conn net.Conn) *Session {
	t.Helper()
	ctx.SetIOSend(forwardSend)
	ctx.SetIORecv(forwardRecv)
	sess, err := ctx.NewSession()
	require.NoError(t, err)
	tr := connTransport{conn}
	sess.SetIOReadCtx(tr)
	sess.SetIOWriteCtx(tr)
	return sess
}
