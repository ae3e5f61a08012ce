package netif

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Security 无线网络的加密方式
type Security uint8

const (
	SecurityNone Security = iota
	SecurityWEP
	SecurityWPA
	SecurityWPA2
)

func (s Security) String() string {
	switch s {
	case SecurityNone:
		return "none"
	case SecurityWEP:
		return "wep"
	case SecurityWPA:
		return "wpa"
	case SecurityWPA2:
		return "wpa2"
	default:
		return fmt.Sprintf("security(%d)", uint8(s))
	}
}

func ParseSecurity(name string) (Security, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return SecurityNone, nil
	case "wep":
		return SecurityWEP, nil
	case "wpa":
		return SecurityWPA, nil
	case "wpa2":
		return SecurityWPA2, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownSec, name)
}

// WLAN 无线接口，加入网络后按以太网方式获取地址
type WLAN struct {
	*Ethernet
	ssid     string
	psk      string
	security Security
	joined   bool
}

func NewWLAN(eth *Ethernet, ssid, psk string, security Security) *WLAN {
	return &WLAN{Ethernet: eth, ssid: ssid, psk: psk, security: security}
}

// Connect 校验凭据并加入网络
func (w *WLAN) Connect(timeout time.Duration) error {
	if !w.inited {
		return errNotInitialized
	}
	if !w.joined {
		if err := w.validate(); err != nil {
			return err
		}
		w.logger.Infof("joining %q (%s)", w.ssid, w.security)
		w.joined = true
	}
	return w.Ethernet.Connect(timeout)
}

func (w *WLAN) SSID() string {
	return w.ssid
}

func (w *WLAN) validate() error {
	if w.ssid == "" || len(w.ssid) > 32 {
		return fmt.Errorf("%w: %q", errInvalidSSID, w.ssid)
	}
	n := len(w.psk)
	var ok bool
	switch w.security {
	case SecurityNone:
		ok = n == 0
	case SecurityWEP:
		ok = n == 5 || n == 13 || ((n == 10 || n == 26) && isHex(w.psk))
	case SecurityWPA, SecurityWPA2:
		ok = (n >= 8 && n <= 63) || (n == 64 && isHex(w.psk))
	default:
		return fmt.Errorf("%w: %s", errUnknownSec, w.security)
	}
	if !ok {
		return fmt.Errorf("%w %s", errInvalidPSK, w.security)
	}
	return nil
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}
