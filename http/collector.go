package http

import (
	"bytes"
	"io"
	"log/slog"
)

// maxReadErrors bounds how many consecutive failed reads the collector
// tolerates before giving up on the stream.
const maxReadErrors = 8

// Collect reads from r until the header terminator is buffered or
// MaxHeaderBytes is reached. It returns io.EOF when the peer closed the
// stream before a terminator arrived. Body bytes past the terminator are
// only present if they were already read.
func Collect(r io.Reader, logger *slog.Logger) ([]byte, error) {
	buf := make([]byte, 0, ReadChunkSize)
	var chunk [ReadChunkSize]byte

	failures := 0
	for len(buf) < MaxHeaderBytes {
		n, err := r.Read(chunk[:min(ReadChunkSize, MaxHeaderBytes-len(buf))])
		buf = append(buf, chunk[:n]...)

		if bytes.Contains(buf, headerTerminator) {
			return buf, nil
		}

		switch {
		case err == nil && n == 0:
			return buf, io.EOF
		case err == nil:
			failures = 0
		case isPeerGone(err) || isTimeout(err):
			return buf, io.EOF
		default:
			failures++
			logger.Warn("reading connection failed", "error", err, "attempt", failures)
			if failures >= maxReadErrors {
				return buf, io.EOF
			}
		}
	}

	return buf, nil
}
