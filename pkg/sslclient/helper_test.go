package sslclient

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testServerName = "sslclient.test"

func newTestCertificate(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(7),
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

// serveHTTPS 读取一个请求后按chunks逐条写回响应，然后发送close_notify
func serveHTTPS(conn net.Conn, cert tls.Certificate, chunks ...string) <-chan string {
	done := make(chan string, 1)
	go func() {
		defer conn.Close()
		srv := tls.Server(conn, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MaxVersion:   tls.VersionTLS12,
		})
		if err := srv.Handshake(); err != nil {
			done <- ""
			return
		}
		buf := make([]byte, 1024)
		n, err := srv.Read(buf)
		if err != nil {
			done <- ""
			return
		}
		for _, c := range chunks {
			if _, err := srv.Write([]byte(c)); err != nil {
				break
			}
		}
		_ = srv.Close()
		done <- string(buf[:n])
	}()
	return done
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Server.Host = testServerName
	cfg.TLS.HandshakeTimeout = 5 * time.Second
	return &cfg
}

func newTestClient(t *testing.T, cfg *Config, roots *x509.CertPool) (*Client, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	c, err := NewClient(cfg, roots, logger)
	require.NoError(t, err)
	return c, hook
}

// messages 返回不低于level的日志
func messages(hook *test.Hook, level log.Level) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level <= level {
			out = append(out, e.Message)
		}
	}
	return out
}

func containsMessage(hook *test.Hook, prefix string) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if strings.HasPrefix(e.Message, prefix) {
			n++
		}
	}
	return n
}
