package layer

import "errors"

var (
	errSequenceNumberOverflow = errors.New("sequence number overflow")
	errBufferTooSmall         = errors.New("buffer too small")
	errUnsupportedVersion     = errors.New("unsuported protocol version")
	errInvalidContentType     = errors.New("invalid content type")
	errRecordTooLarge         = errors.New("record too large")
	errLengthMismatch         = errors.New("length mismatch")
)
