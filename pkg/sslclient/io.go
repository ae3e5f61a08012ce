package sslclient

import (
	"github.com/yly97/sslclient/pkg/ssl"
)

// SocketReceive 接收回调，直接转发给传输层，错误原样返回
func SocketReceive(t ssl.Transport, b []byte) (int, error) {
	if t == nil {
		return 0, ErrNoTransport
	}
	return t.Receive(b)
}

// SocketSend 发送回调，直接转发给传输层，错误原样返回
func SocketSend(t ssl.Transport, b []byte) (int, error) {
	if t == nil {
		return 0, ErrNoTransport
	}
	return t.Send(b)
}
