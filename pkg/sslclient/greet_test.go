package sslclient

import (
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/yly97/sslclient/pkg/ssl"
)

// fakeChannel 按脚本返回读结果，chunks之后返回final
type fakeChannel struct {
	writeRet int
	code     ssl.ErrorCode
	chunks   []string
	final    int

	written  []string
	reads    int
	readCaps []int
}

func (f *fakeChannel) Write(b []byte) int {
	f.written = append(f.written, string(b))
	if f.writeRet != 0 {
		return f.writeRet
	}
	return len(b)
}

func (f *fakeChannel) Read(b []byte) int {
	f.reads++
	f.readCaps = append(f.readCaps, len(b))
	if len(f.chunks) == 0 {
		return f.final
	}
	n := copy(b, f.chunks[0])
	f.chunks = f.chunks[1:]
	return n
}

func (f *fakeChannel) LastError() ssl.ErrorCode {
	return f.code
}

func TestClientGreetChunks(t *testing.T) {
	for _, final := range []int{0, ssl.FatalError} {
		c, hook := newTestClient(t, testConfig(), nil)
		ch := &fakeChannel{
			chunks: []string{"HTTP/1.0 200 OK\r\n\r\n", "Hello world!", strings.Repeat("x", MaxDataSize-1)},
			final:  final,
			code:   ssl.ErrSocketPeerClosed,
		}

		ret := c.ClientGreet(ch, make([]byte, MaxDataSize))
		assert.Equal(t, final, ret)
		assert.Equal(t, []string{DefaultRequest}, ch.written)
		assert.Equal(t, 4, ch.reads)
		for _, n := range ch.readCaps {
			assert.Equal(t, MaxDataSize-1, n)
		}

		assert.Equal(t, []string{
			"Received:",
			"HTTP/1.0 200 OK\r\n\r\n",
			"Hello world!",
			strings.Repeat("x", MaxDataSize-1),
		}, messages(hook, log.InfoLevel))
	}
}

func TestClientGreetWriteError(t *testing.T) {
	c, hook := newTestClient(t, testConfig(), nil)
	ch := &fakeChannel{writeRet: ssl.FatalError, code: ssl.ErrSocket, chunks: []string{"never"}}

	assert.Equal(t, ExitFailure, c.ClientGreet(ch, make([]byte, MaxDataSize)))
	assert.Zero(t, ch.reads)
	assert.Equal(t, []string{"Write error[-308]:" + ssl.ErrSocket.String()}, messages(hook, log.InfoLevel))
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestClientGreetCustomRequest(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Request = "GET / HTTP/1.0\r\nhost: example.test\r\n\r\n"
	c, _ := newTestClient(t, cfg, nil)
	ch := &fakeChannel{}

	assert.Equal(t, 0, c.ClientGreet(ch, make([]byte, 2*MaxDataSize)))
	assert.Equal(t, []string{cfg.Server.Request}, ch.written)
	assert.Equal(t, []int{MaxDataSize - 1}, ch.readCaps)
}

func TestClientGreetShortBuffer(t *testing.T) {
	for _, buf := range [][]byte{nil, {}, make([]byte, 1)} {
		c, hook := newTestClient(t, testConfig(), nil)
		ch := &fakeChannel{}

		assert.NotPanics(t, func() {
			assert.Equal(t, ExitFailure, c.ClientGreet(ch, buf))
		})
		assert.Empty(t, ch.written)
		assert.Zero(t, ch.reads)
		assert.Equal(t, 1, containsMessage(hook, "receive buffer too small"))
	}

	c, _ := newTestClient(t, testConfig(), nil)
	ch := &fakeChannel{}
	assert.Equal(t, 0, c.ClientGreet(ch, make([]byte, 2)))
	assert.Equal(t, []int{1}, ch.readCaps)
}
