package sslclient

import (
	"github.com/yly97/sslclient/pkg/ssl"
)

// MaxDataSize 接收缓冲大小，每次最多读取MaxDataSize-1字节
const MaxDataSize = 1024 * 4

// Channel 已建立的安全会话
type Channel interface {
	Write(b []byte) int
	Read(b []byte) int
	LastError() ssl.ErrorCode
}

var _ Channel = (*ssl.Session)(nil)

// ClientGreet 发送请求并逐块打印响应，返回最后一次读取的结果
func (c *Client) ClientGreet(ch Channel, buf []byte) int {
	// 至少要留出一个字节的读取空间
	if len(buf) < 2 {
		c.logger.Errorf("receive buffer too small: %d bytes", len(buf))
		return ExitFailure
	}
	if ch.Write([]byte(c.cfg.Server.Request)) < 0 {
		code := ch.LastError()
		c.logger.Errorf("Write error[%d]:%s", int(code), code)
		return ExitFailure
	}

	if len(buf) > MaxDataSize {
		buf = buf[:MaxDataSize]
	}
	c.logger.Info("Received:")
	var ret int
	for {
		if ret = ch.Read(buf[:len(buf)-1]); ret <= 0 {
			break
		}
		c.logger.Info(string(buf[:ret]))
	}
	if ret < 0 {
		code := ch.LastError()
		c.logger.Debugf("read ended: error[%d]:%s", int(code), code)
	}
	return ret
}
