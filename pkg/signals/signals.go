package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var onlyOneSignalHandler = make(chan struct{})

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// RegisterSignalHandlers 收到第一个SIGINT或SIGTERM时关闭返回的channel，
// 第二个信号直接退出进程，只能调用一次
func RegisterSignalHandlers() <-chan struct{} {
	close(onlyOneSignalHandler) // 重复调用会panic

	stop := make(chan struct{})
	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)
	go func() {
		<-c
		close(stop)
		<-c
		os.Exit(1)
	}()
	return stop
}

// Context 返回在stopCh关闭时结束的context
func Context(stopCh <-chan struct{}) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-stopCh
		cancel()
	}()
	return ctx
}
