package ssl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"

	"github.com/yly97/sslclient/pkg/arena"
	"github.com/yly97/sslclient/pkg/layer"
)

var (
	errUnknownMethod     = errors.New("unknown protocol method")
	errUnknownVerifyMode = errors.New("unknown verify mode")
	errInvalidMethod     = errors.New("invalid protocol method")
	errNotIOPool         = errors.New("arena is not a fixed io pool")
	errContextFreed      = errors.New("context already freed")
	errSessionFreed      = errors.New("session already freed")
	errNoTransport       = errors.New("read or write context not set")
	errNoCertificate     = errors.New("no certificate found")
	errShortWrite        = errors.New("transport accepted fewer bytes than requested")
	errNotConnected      = errors.New("session not connected")
)

// ErrorCode 会话的错误码，负数表示致命错误
type ErrorCode int

const (
	ErrNone               ErrorCode = 0
	ErrZeroReturn         ErrorCode = 6
	ErrMemory             ErrorCode = -125
	ErrBadFuncArg         ErrorCode = -173
	ErrNoSigner           ErrorCode = -188
	ErrSocket             ErrorCode = -308
	ErrFatalAlert         ErrorCode = -313
	ErrDomainNameMismatch ErrorCode = -322
	ErrVersion            ErrorCode = -326
	ErrUnknownRecord      ErrorCode = -327
	ErrNoPeerCert         ErrorCode = -330
	ErrTimeout            ErrorCode = -339
	ErrSocketPeerClosed   ErrorCode = -397
	ErrGeneral            ErrorCode = -1
)

// String 错误码对应的可读描述
func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "no error"
	case ErrZeroReturn:
		return "peer sent close notify"
	case ErrMemory:
		return "out of memory error"
	case ErrBadFuncArg:
		return "bad function argument"
	case ErrNoSigner:
		return "no signer to confirm the peer certificate"
	case ErrSocket:
		return "error state on socket"
	case ErrFatalAlert:
		return "received alert fatal error"
	case ErrDomainNameMismatch:
		return "peer subject name mismatch"
	case ErrVersion:
		return "record layer version error"
	case ErrUnknownRecord:
		return "unknown type in record header"
	case ErrNoPeerCert:
		return "need peer's cert"
	case ErrTimeout:
		return "handshake timeout"
	case ErrSocketPeerClosed:
		return "peer closed the underlying transport"
	case ErrGeneral:
		return "general failure"
	default:
		return "unknown error number"
	}
}

// IOError 传输回调返回的错误，原样保存以便上层区分
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "transport " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AlertError 握手过程中收到或发送的告警
type AlertError struct {
	Alert layer.Alert
	err   error
}

func (e *AlertError) Error() string {
	return e.Alert.String()
}

func (e *AlertError) Unwrap() error {
	return e.err
}

// classify 把Go错误转换为会话错误码
func classify(err error) ErrorCode {
	if err == nil {
		return ErrNone
	}
	if err == io.EOF {
		return ErrZeroReturn
	}

	var (
		ioErr     *IOError
		alertErr  *AlertError
		hostErr   x509.HostnameError
		authErr   x509.UnknownAuthorityError
		tlsAlert  tls.AlertError
		recordErr tls.RecordHeaderError
	)
	switch {
	case errors.Is(err, arena.ErrExhausted), errors.Is(err, arena.ErrTooLarge):
		return ErrMemory
	case errors.Is(err, errNoTransport), errors.Is(err, errContextFreed),
		errors.Is(err, errSessionFreed), errors.Is(err, errNotConnected):
		return ErrBadFuncArg
	case errors.As(err, &ioErr):
		if errors.Is(ioErr.Err, io.EOF) || errors.Is(ioErr.Err, io.ErrUnexpectedEOF) ||
			errors.Is(ioErr.Err, net.ErrClosed) || errors.Is(ioErr.Err, io.ErrClosedPipe) {
			return ErrSocketPeerClosed
		}
		if isTimeout(ioErr.Err) {
			return ErrTimeout
		}
		return ErrSocket
	case errors.Is(err, errNoCertificate):
		return ErrNoPeerCert
	case errors.As(err, &hostErr):
		return ErrDomainNameMismatch
	case errors.As(err, &authErr):
		return ErrNoSigner
	case errors.As(err, &alertErr), errors.As(err, &tlsAlert):
		return ErrFatalAlert
	case errors.As(err, &recordErr):
		if recordErr.Msg == "first record does not look like a TLS handshake" {
			return ErrUnknownRecord
		}
		return ErrVersion
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return ErrTimeout
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrSocketPeerClosed
	}
	return ErrGeneral
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// wrapAlert tls.AlertError只携带描述，补上级别以便日志输出
func wrapAlert(err error) error {
	var tlsAlert tls.AlertError
	if errors.As(err, &tlsAlert) {
		return &AlertError{
			Alert: layer.Alert{Level: layer.Fatal, Description: layer.Description(tlsAlert)},
			err:   err,
		}
	}
	return err
}
