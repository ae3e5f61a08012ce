package ssl

import (
	log "github.com/sirupsen/logrus"
	"github.com/yly97/sslclient/pkg/layer"
)

// recordTracer 在trace级别打印经过回调的记录头。
// 流式传输只跟踪发送方向，接收到的数据不保证按记录对齐
type recordTracer struct {
	datagram  bool
	encrypted bool // 流式传输已经发出ChangeCipherSpec，DTLS按epoch判断
	logger    *log.Logger
}

const (
	dirSend = iota
	dirRecv
)

func (t *recordTracer) trace(dir int, b []byte) {
	if t.logger == nil || !t.logger.IsLevelEnabled(log.TraceLevel) {
		return
	}
	if dir == dirRecv && !t.datagram {
		return
	}
	arrow := "->"
	if dir == dirRecv {
		arrow = "<-"
	}

	records, err := layer.SplitRecords(b)
	for i := range records {
		r := &records[i]
		switch {
		case r.Header.ContentType == layer.ContentTypeChangeCipherSpec:
			if !t.datagram {
				t.encrypted = true
			}
		case t.encrypted || r.Header.Epoch > 0:
			// 加密后只有记录头可读
		case r.Header.ContentType == layer.ContentTypeAlert:
			var a layer.Alert
			if a.Unmarshal(r.Content) == nil {
				t.logger.Tracef("[ssl] %s %s %s", arrow, &r.Header, a)
				continue
			}
		default:
			if h, ok := r.Handshake(); ok {
				t.logger.Tracef("[ssl] %s %s %s", arrow, &r.Header, h.MessageType)
				continue
			}
		}
		t.logger.Tracef("[ssl] %s %s", arrow, &r.Header)
	}
	if err != nil {
		t.logger.Tracef("[ssl] %s %d bytes not parsed as records: %v", arrow, len(b), err)
	}
}
