package device

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// CyclicHandler 返回周期处理函数：每次调用翻转LED
func CyclicHandler(dev Device, state *LEDState) func() {
	return func() {
		dev.LED(state.Flip())
	}
}

// StartCyclic 按period周期调用fn，直到ctx结束，返回的channel在退出后关闭
func StartCyclic(ctx context.Context, clk clock.Clock, period time.Duration, fn func()) <-chan struct{} {
	ticker := clk.Ticker(period)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return done
}
