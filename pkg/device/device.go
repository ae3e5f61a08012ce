package device

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Device 板载外设
type Device interface {
	LED(on bool)
}

// HostDevice 主机上运行时使用，LED状态只写日志，Logger为nil时使用标准logger
type HostDevice struct {
	Logger *log.Logger
}

func (dev *HostDevice) LED(on bool) {
	logger := dev.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	if on {
		logger.Debug("LED on")
	} else {
		logger.Debug("LED off")
	}
}

// LEDState LED当前状态，初始为亮
type LEDState struct {
	off atomic.Bool
}

// On 当前是否点亮
func (s *LEDState) On() bool {
	return !s.off.Load()
}

// Flip 翻转状态并返回新状态
func (s *LEDState) Flip() bool {
	for {
		off := s.off.Load()
		if s.off.CompareAndSwap(off, !off) {
			return off
		}
	}
}
