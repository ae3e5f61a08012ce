package ssl

import (
	"crypto/x509"
	"time"
)

// peerVerifier 对端证书验证，InsecureSkipVerify之后由它接管证书链的检查，
// TLS和DTLS共用同一套逻辑
type peerVerifier struct {
	roots      *x509.CertPool // nil时使用系统根证书
	serverName string
	now        func() time.Time
}

func (v *peerVerifier) verify(rawCertificates [][]byte, _ [][]*x509.Certificate) error {
	certs, err := loadCertificates(rawCertificates)
	if err != nil {
		return err
	}
	_, err = verifyServerCert(certs, v.roots, v.serverName, v.now())
	return err
}

// loadCertificates 将byte切片表示的certificates转换为x509.Certificate对象切片
func loadCertificates(rawCertificates [][]byte) ([]*x509.Certificate, error) {
	if len(rawCertificates) == 0 {
		return nil, errNoCertificate
	}

	certs := make([]*x509.Certificate, 0, len(rawCertificates))
	for _, rawCert := range rawCertificates {
		cert, err := x509.ParseCertificate(rawCert)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// verifyServerCert 传入服务端证书链以及根证书，验证服务端证书并返回完整的证书链，
// serverName非空时同时检查证书中的主机名
func verifyServerCert(certs []*x509.Certificate, roots *x509.CertPool, serverName string, now time.Time) ([][]*x509.Certificate, error) {
	intermediateCAPool := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediateCAPool.AddCert(cert)
	}
	opts := x509.VerifyOptions{
		Roots:         roots,
		CurrentTime:   now,
		DNSName:       serverName,
		Intermediates: intermediateCAPool,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	return certs[0].Verify(opts)
}

var timeNow = time.Now
