package sslclient

import "errors"

var (
	ErrNoTransport = errors.New("no transport bound to session")

	errInvalidNetworkType = errors.New("unknown network type")
	errStaticAddress      = errors.New("static addressing needs ip, mask and gateway")
	errInvalidPort        = errors.New("invalid server port")
	errNoServer           = errors.New("server host is empty")
	errNoRequest          = errors.New("request is empty")
	errPoolSize           = errors.New("memory pool size must be positive")
	errLEDPeriod          = errors.New("led period must be positive")
	errMetricsPath        = errors.New("metrics path must be absolute")
)
