package ssl

import (
	"crypto/tls"
	"fmt"
	"strings"
)

type protocolFamily uint8

const (
	familyTLS protocolFamily = iota
	familyDTLS
)

// Method 协议方法，决定会话使用的协议族和版本范围
type Method struct {
	name       string
	family     protocolFamily
	minVersion uint16
	maxVersion uint16
}

func TLSv12ClientMethod() Method {
	return Method{name: "TLSv1.2", family: familyTLS, minVersion: tls.VersionTLS12, maxVersion: tls.VersionTLS12}
}

func TLSv13ClientMethod() Method {
	return Method{name: "TLSv1.3", family: familyTLS, minVersion: tls.VersionTLS13, maxVersion: tls.VersionTLS13}
}

// TLSClientMethod 协商双方都支持的最高版本，最低TLS 1.2
func TLSClientMethod() Method {
	return Method{name: "TLS", family: familyTLS, minVersion: tls.VersionTLS12, maxVersion: tls.VersionTLS13}
}

// DTLSv12ClientMethod 基于数据报传输的DTLS 1.2，传输层需要保留报文边界
func DTLSv12ClientMethod() Method {
	return Method{name: "DTLSv1.2", family: familyDTLS, minVersion: tls.VersionTLS12, maxVersion: tls.VersionTLS12}
}

func (m Method) String() string {
	if m.name == "" {
		return "Invalid Method"
	}
	return m.name
}

// Datagram 是否需要数据报传输
func (m Method) Datagram() bool {
	return m.family == familyDTLS
}

func (m Method) valid() bool {
	return m.name != ""
}

// ParseMethod 解析配置文件中的协议名
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tlsv1.2", "tls1.2":
		return TLSv12ClientMethod(), nil
	case "tlsv1.3", "tls1.3":
		return TLSv13ClientMethod(), nil
	case "tls", "":
		return TLSClientMethod(), nil
	case "dtlsv1.2", "dtls1.2", "dtls":
		return DTLSv12ClientMethod(), nil
	default:
		return Method{}, fmt.Errorf("%w: %q", errUnknownMethod, name)
	}
}

// VerifyMode 对端证书的验证方式
type VerifyMode uint8

const (
	VerifyPeer VerifyMode = iota
	VerifyNone
)

func (v VerifyMode) String() string {
	switch v {
	case VerifyPeer:
		return "peer"
	case VerifyNone:
		return "none"
	default:
		return "invalid"
	}
}

// ParseVerifyMode 空字符串返回默认的VerifyPeer
func ParseVerifyMode(s string) (VerifyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "peer", "":
		return VerifyPeer, nil
	case "none":
		return VerifyNone, nil
	default:
		return VerifyPeer, fmt.Errorf("%w: %q", errUnknownVerifyMode, s)
	}
}
