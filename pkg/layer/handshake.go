package layer

import (
	"encoding/binary"

	"github.com/yly97/sslclient/pkg/util"
)

const (
	HandshakeHeaderSize     = 4
	DTLSHandshakeHeaderSize = 12
)

// HandshakeHeader 握手消息头，MessageSequence和分片字段只在DTLS中存在
type HandshakeHeader struct {
	MessageType     MessageType
	MessageLength   uint32 // uint24
	MessageSequence uint16
	FragmentOffset  uint32 // uint24
	FragmentLength  uint32 // uint24
}

func (h *HandshakeHeader) Marshal(datagram bool) ([]byte, error) {
	if !datagram {
		out := make([]byte, HandshakeHeaderSize)
		out[0] = byte(h.MessageType)
		util.BigEndian.PutUint24(out[1:], h.MessageLength)
		return out, nil
	}

	out := make([]byte, DTLSHandshakeHeaderSize)
	out[0] = byte(h.MessageType)
	util.BigEndian.PutUint24(out[1:], h.MessageLength)
	binary.BigEndian.PutUint16(out[4:], h.MessageSequence)
	util.BigEndian.PutUint24(out[6:], h.FragmentOffset)
	util.BigEndian.PutUint24(out[9:], h.FragmentLength)
	return out, nil
}

func (h *HandshakeHeader) Unmarshal(data []byte, datagram bool) error {
	if !datagram {
		if len(data) < HandshakeHeaderSize {
			return errBufferTooSmall
		}
		h.MessageType = MessageType(data[0])
		h.MessageLength = util.BigEndian.Uint24(data[1:])
		h.MessageSequence, h.FragmentOffset = 0, 0
		h.FragmentLength = h.MessageLength
		return nil
	}

	if len(data) < DTLSHandshakeHeaderSize {
		return errBufferTooSmall
	}
	h.MessageType = MessageType(data[0])
	h.MessageLength = util.BigEndian.Uint24(data[1:])
	h.MessageSequence = binary.BigEndian.Uint16(data[4:])
	h.FragmentOffset = util.BigEndian.Uint24(data[6:])
	h.FragmentLength = util.BigEndian.Uint24(data[9:])
	if h.FragmentOffset+h.FragmentLength > h.MessageLength {
		return errLengthMismatch
	}
	return nil
}
