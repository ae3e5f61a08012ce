package layer

import "fmt"

// MessageType 握手消息类型
type MessageType uint8

const (
	TypeHelloRequest        MessageType = 0
	TypeClientHello         MessageType = 1
	TypeServerHello         MessageType = 2
	TypeHelloVerifyRequest  MessageType = 3
	TypeNewSessionTicket    MessageType = 4
	TypeEncryptedExtensions MessageType = 8
	TypeCertificate         MessageType = 11
	TypeServerKeyExchange   MessageType = 12
	TypeCertificateRequest  MessageType = 13
	TypeServerHelloDone     MessageType = 14
	TypeCertificateVerify   MessageType = 15
	TypeClientKeyExchange   MessageType = 16
	TypeFinished            MessageType = 20
)

func (t MessageType) String() string {
	switch t {
	case TypeHelloRequest:
		return "HelloRequest"
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case TypeNewSessionTicket:
		return "NewSessionTicket"
	case TypeEncryptedExtensions:
		return "EncryptedExtensions"
	case TypeCertificate:
		return "Certificate"
	case TypeServerKeyExchange:
		return "ServerKeyExchange"
	case TypeCertificateRequest:
		return "CertificateRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}
