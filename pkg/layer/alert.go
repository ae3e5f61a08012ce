package layer

import "fmt"

type Level byte

const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	default:
		return "invalid alert level"
	}
}

// Description TLS/DTLS告警描述，取值与RFC 5246/8446一致
type Description byte

const (
	CloseNotify            Description = 0
	UnexpectedMessage      Description = 10
	BadRecordMac           Description = 20
	DecryptionFailed       Description = 21
	RecordOverflow         Description = 22
	DecompressionFailure   Description = 30
	HandshakeFailure       Description = 40
	NoCertificate          Description = 41
	BadCertificate         Description = 42
	UnsupportedCertificate Description = 43
	CertificateRevoked     Description = 44
	CertificateExpired     Description = 45
	CertificateUnknown     Description = 46
	IllegalParameter       Description = 47
	UnknownCA              Description = 48
	AccessDenied           Description = 49
	DecodeError            Description = 50
	DecryptError           Description = 51
	ExportRestriction      Description = 60
	ProtocolVersion        Description = 70
	InsufficientSecurity   Description = 71
	InternalError          Description = 80
	InappropriateFallback  Description = 86
	UserCanceled           Description = 90
	NoRenegotiation        Description = 100
	MissingExtension       Description = 109
	UnsupportedExtension   Description = 110
	UnrecognizedName       Description = 112
	NoApplicationProtocol  Description = 120
)

// String 返回可读的告警描述，用于日志输出
func (d Description) String() string {
	switch d {
	case CloseNotify:
		return "close notify"
	case UnexpectedMessage:
		return "unexpected message"
	case BadRecordMac:
		return "bad record MAC"
	case DecryptionFailed:
		return "decryption failed"
	case RecordOverflow:
		return "record overflow"
	case DecompressionFailure:
		return "decompression failure"
	case HandshakeFailure:
		return "handshake failure"
	case NoCertificate:
		return "no certificate"
	case BadCertificate:
		return "bad certificate"
	case UnsupportedCertificate:
		return "unsupported certificate"
	case CertificateRevoked:
		return "revoked certificate"
	case CertificateExpired:
		return "expired certificate"
	case CertificateUnknown:
		return "unknown certificate"
	case IllegalParameter:
		return "illegal parameter"
	case UnknownCA:
		return "unknown certificate authority"
	case AccessDenied:
		return "access denied"
	case DecodeError:
		return "error decoding message"
	case DecryptError:
		return "error decrypting message"
	case ExportRestriction:
		return "export restriction"
	case ProtocolVersion:
		return "protocol version not supported"
	case InsufficientSecurity:
		return "insufficient security level"
	case InternalError:
		return "internal error"
	case InappropriateFallback:
		return "inappropriate fallback"
	case UserCanceled:
		return "user canceled"
	case NoRenegotiation:
		return "no renegotiation"
	case MissingExtension:
		return "missing extension"
	case UnsupportedExtension:
		return "unsupported extension"
	case UnrecognizedName:
		return "unrecognized name"
	case NoApplicationProtocol:
		return "no application protocol"
	default:
		return fmt.Sprintf("alert(%d)", byte(d))
	}
}

type Alert struct {
	Level       Level
	Description Description
}

// IsFatal close_notify以外的fatal告警都会中止会话
func (a Alert) IsFatal() bool {
	return a.Level == Fatal && a.Description != CloseNotify
}

func (a Alert) String() string {
	return a.Level.String() + " alert: " + a.Description.String()
}

func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errBufferTooSmall
	}
	a.Level = Level(data[0])
	a.Description = Description(data[1])
	return nil
}
