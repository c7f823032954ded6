package http

import (
	"fmt"
	"strings"
)

// PercentDecode reverses %XY escapes. Only 7-bit output is accepted, so an
// escape that decodes to a byte with the high bit set is an error.
func PercentDecode(s string) (string, error) {
	if strings.IndexByte(s, '%') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}

		if i+2 >= len(s) {
			return "", fmt.Errorf("%w: truncated escape at %d", ErrBadEscape, i)
		}

		hi, lo := hexToByte(s[i+1]), hexToByte(s[i+2])
		if hi == 255 || lo == 255 {
			return "", fmt.Errorf("%w: %q", ErrBadEscape, s[i:i+3])
		}

		decoded := hi<<4 | lo
		if decoded > 0x7f {
			return "", fmt.Errorf("%w: %q", ErrNonASCIIEscape, s[i:i+3])
		}

		b.WriteByte(decoded)
		i += 2
	}

	return b.String(), nil
}
