package transport

import "errors"

var (
	ErrNotConnected     = errors.New("socket not connected")
	ErrAlreadyConnected = errors.New("socket already connected")
	errInvalidPort      = errors.New("invalid port")
	errProxyDatagram    = errors.New("socks5 proxy does not carry datagrams")
)
