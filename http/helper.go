package http

import (
	"strings"
	"unicode/utf8"
)

func hexToByte(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 255 // Invalid hex
}

// percentDecode decodes %XX escapes. Malformed escapes are kept as-is and
// invalid UTF-8 in the result is replaced with U+FFFD, so it never fails.
func percentDecode(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return strings.ToValidUTF8(s, string(utf8.RuneError))
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) {
			hi, lo := hexToByte(s[i+1]), hexToByte(s[i+2])
			if hi != 255 && lo != 255 {
				buf = append(buf, hi<<4|lo)
				i += 2
				continue
			}
		}
		buf = append(buf, c)
	}

	return strings.ToValidUTF8(string(buf), string(utf8.RuneError))
}

// formDecode applies percent decoding, then maps '+' to a space.
func formDecode(s string) string {
	return strings.ReplaceAll(percentDecode(s), "+", " ")
}
