package netif

import "errors"

var (
	errNotInitialized = errors.New("interface not initialized")
	errNoLink         = errors.New("no usable network link")
	errLinkDown       = errors.New("network link is down")
	errDHCPTimeout    = errors.New("no DHCP lease before timeout")
	errInvalidIP      = errors.New("invalid IPv4 address")
	errInvalidMask    = errors.New("invalid subnet mask")
	errNoDefaultRoute = errors.New("no default route")
	errInvalidSSID    = errors.New("invalid SSID")
	errInvalidPSK     = errors.New("invalid pre-shared key for security mode")
	errUnknownSec     = errors.New("unknown wlan security mode")
)
