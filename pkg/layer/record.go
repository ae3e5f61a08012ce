package layer

import (
	"encoding/binary"
	"fmt"

	"github.com/yly97/sslclient/pkg/util"
)

const (
	RecordHeaderSize       = 5
	DTLSRecordHeaderSize   = 13
	MaxSequenceNumber      = 0x0000FFFFFFFFFFFF
	maxRecordContentLength = 1<<14 + 2048
)

// Version 记录层中的协议版本
type Version uint16

const (
	VersionSSL30  Version = 0x0300
	VersionTLS10  Version = 0x0301
	VersionTLS11  Version = 0x0302
	VersionTLS12  Version = 0x0303
	VersionTLS13  Version = 0x0304
	VersionDTLS10 Version = 0xfeff
	VersionDTLS12 Version = 0xfefd
)

func (v Version) String() string {
	switch v {
	case VersionSSL30:
		return "SSL3.0"
	case VersionTLS10:
		return "TLS1.0"
	case VersionTLS11:
		return "TLS1.1"
	case VersionTLS12:
		return "TLS1.2"
	case VersionTLS13:
		return "TLS1.3"
	case VersionDTLS10:
		return "DTLS1.0"
	case VersionDTLS12:
		return "DTLS1.2"
	default:
		return fmt.Sprintf("Version(%#04x)", uint16(v))
	}
}

func (v Version) datagram() bool {
	return v == VersionDTLS10 || v == VersionDTLS12
}

// RecordHeader 记录头，Epoch和SequenceNumber只在DTLS中存在
type RecordHeader struct {
	ContentType    ContentType
	Version        Version
	Epoch          uint16
	SequenceNumber uint64 // uint48
	ContentLength  uint16
}

// Size 记录头的编码长度
func (r *RecordHeader) Size() int {
	if r.Version.datagram() {
		return DTLSRecordHeaderSize
	}
	return RecordHeaderSize
}

func (r *RecordHeader) Marshal() ([]byte, error) {
	if !r.Version.datagram() {
		out := make([]byte, RecordHeaderSize)
		out[0] = byte(r.ContentType)
		binary.BigEndian.PutUint16(out[1:], uint16(r.Version))
		binary.BigEndian.PutUint16(out[3:], r.ContentLength)
		return out, nil
	}

	if r.SequenceNumber > MaxSequenceNumber {
		return nil, errSequenceNumberOverflow
	}
	out := make([]byte, DTLSRecordHeaderSize)
	out[0] = byte(r.ContentType)
	binary.BigEndian.PutUint16(out[1:], uint16(r.Version))
	binary.BigEndian.PutUint16(out[3:], r.Epoch)
	util.BigEndian.PutUint48(out[5:], r.SequenceNumber)
	binary.BigEndian.PutUint16(out[11:], r.ContentLength)
	return out, nil
}

// Unmarshal 根据版本字段判断是TLS还是DTLS记录头
func (r *RecordHeader) Unmarshal(data []byte) error {
	if len(data) < RecordHeaderSize {
		return errBufferTooSmall
	}

	r.ContentType = ContentType(data[0])
	if !r.ContentType.valid() {
		return errInvalidContentType
	}
	r.Version = Version(binary.BigEndian.Uint16(data[1:]))
	if r.Version>>8 != 0x03 && !r.Version.datagram() {
		return errUnsupportedVersion
	}

	if !r.Version.datagram() {
		r.Epoch, r.SequenceNumber = 0, 0
		r.ContentLength = binary.BigEndian.Uint16(data[3:])
	} else {
		if len(data) < DTLSRecordHeaderSize {
			return errBufferTooSmall
		}
		r.Epoch = binary.BigEndian.Uint16(data[3:])
		r.SequenceNumber = util.BigEndian.Uint48(data[5:])
		r.ContentLength = binary.BigEndian.Uint16(data[11:])
	}
	if r.ContentLength > maxRecordContentLength {
		return errRecordTooLarge
	}
	return nil
}

func (r *RecordHeader) String() string {
	if r.Version.datagram() {
		return fmt.Sprintf("%s %s epoch=%d seq=%d len=%d", r.Version, r.ContentType, r.Epoch, r.SequenceNumber, r.ContentLength)
	}
	return fmt.Sprintf("%s %s len=%d", r.Version, r.ContentType, r.ContentLength)
}

// Record 一条完整的记录，Content引用原始数据
type Record struct {
	Header  RecordHeader
	Content []byte
}

// Handshake 明文握手记录中第一条消息的头，其他记录返回false
func (r *Record) Handshake() (HandshakeHeader, bool) {
	var h HandshakeHeader
	if r.Header.ContentType != ContentTypeHandshake {
		return h, false
	}
	if err := h.Unmarshal(r.Content, r.Header.Version.datagram()); err != nil {
		return h, false
	}
	return h, true
}

// SplitRecords 把一段数据切分为完整的记录，末尾不完整的记录返回errBufferTooSmall
func SplitRecords(data []byte) ([]Record, error) {
	var records []Record
	for len(data) > 0 {
		var r Record
		if err := r.Header.Unmarshal(data); err != nil {
			return records, err
		}
		size := r.Header.Size()
		end := size + int(r.Header.ContentLength)
		if len(data) < end {
			return records, errBufferTooSmall
		}
		r.Content = data[size:end]
		records = append(records, r)
		data = data[end:]
	}
	return records, nil
}
