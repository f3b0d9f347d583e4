package id3

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the text encoding byte that precedes strings in most
// frames.
type Encoding byte

const (
	ISO88591 Encoding = 0
	UTF16BOM Encoding = 1
	UTF16BE  Encoding = 2
	UTF8     Encoding = 3

	// utf16LE never appears on the wire. It stands in for UTF16BOM
	// once a little endian BOM has been seen and has to be reused for
	// strings that were written without one.
	utf16LE Encoding = 0xFF
)

var (
	nul      = []byte{0}
	nul16    = []byte{0, 0}
	bomLE    = []byte{0xFF, 0xFE}
	bomBE    = []byte{0xFE, 0xFF}
	latin1   = charmap.ISO8859_1
	u16le    = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	u16be    = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	u16bomLE = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
)

func parseEncoding(b byte) (Encoding, error) {
	if b > byte(UTF8) {
		return 0, ErrMalformedData
	}
	return Encoding(b), nil
}

func (e Encoding) String() string {
	switch e {
	case ISO88591:
		return "ISO-8859-1"
	case UTF16BOM:
		return "UTF-16"
	case UTF16BE:
		return "UTF-16BE"
	case UTF8:
		return "UTF-8"
	case utf16LE:
		return "UTF-16LE"
	}
	return "unknown"
}

// nulWidth returns the size of the string terminator.
func (e Encoding) nulWidth() int {
	switch e {
	case UTF16BOM, UTF16BE, utf16LE:
		return 2
	}
	return 1
}

func (e Encoding) nul() []byte {
	if e.nulWidth() == 2 {
		return nul16
	}
	return nul
}

// decodeString decodes the whole of data. It never fails; malformed
// input produces replacement characters.
func decodeString(e Encoding, data []byte) string {
	switch e {
	case ISO88591:
		return decodeWith(latin1, data)
	case UTF8:
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	case UTF16BE:
		return decodeWith(u16be, even(data))
	case utf16LE:
		return decodeWith(u16le, even(data))
	case UTF16BOM:
		switch {
		case bytes.HasPrefix(data, bomLE):
			return decodeWith(u16le, even(data[2:]))
		case bytes.HasPrefix(data, bomBE):
			return decodeWith(u16be, even(data[2:]))
		}
		// No BOM. Assume the BOM was only written once for a frame
		// and fall back to native byte order.
		if nativeLittleEndian() {
			return decodeWith(u16le, even(data))
		}
		return decodeWith(u16be, even(data))
	}

	return decodeWith(latin1, data)
}

// decodeTerminated decodes a NUL terminated string from the start of
// data. It returns the string and the number of bytes consumed,
// including the terminator. An unterminated string consumes all of
// data.
func decodeTerminated(e Encoding, data []byte) (string, int) {
	end, size := findNul(e, data)
	return decodeString(e, data[:end]), size
}

// findNul returns the end of the string and the number of bytes
// consumed including the terminator.
func findNul(e Encoding, data []byte) (end int, size int) {
	if e.nulWidth() == 1 {
		i := bytes.IndexByte(data, 0)
		if i < 0 {
			return len(data), len(data)
		}
		return i, i + 1
	}

	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return i, i + 2
		}
	}

	return len(data), len(data)
}

// encodeString encodes s without a terminator.
func encodeString(e Encoding, s string) []byte {
	var (
		out []byte
		err error
	)
	switch e {
	case UTF8:
		return []byte(s)
	case UTF16BOM:
		out, err = u16bomLE.NewEncoder().Bytes([]byte(s))
	case UTF16BE:
		out, err = u16be.NewEncoder().Bytes([]byte(s))
	case utf16LE:
		out, err = u16le.NewEncoder().Bytes([]byte(s))
	default:
		out, _, err = transform.Bytes(encoding.ReplaceUnsupported(latin1.NewEncoder()), []byte(s))
	}
	if err != nil {
		return nil
	}
	return out
}

// encodeTerminated encodes s followed by the encoding's terminator.
func encodeTerminated(e Encoding, s string) []byte {
	return append(encodeString(e, s), e.nul()...)
}

// fit returns an encoding that version v supports and that can
// represent every string in ss, preferring e.
func (e Encoding) fit(v Version, ss ...string) Encoding {
	if e == utf16LE {
		e = UTF16BOM
	}
	if v < Version24 && (e == UTF8 || e == UTF16BE) {
		return UTF16BOM
	}
	if e == ISO88591 {
		for _, s := range ss {
			if !isLatin1(s) {
				if v < Version24 {
					return UTF16BOM
				}
				return UTF8
			}
		}
	}
	return e
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

func decodeWith(enc encoding.Encoding, data []byte) string {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(utf8.RuneError)
	}
	return string(out)
}

func even(data []byte) []byte {
	return data[:len(data)&^1]
}

func nativeLittleEndian() bool {
	return binary.NativeEndian.Uint16([]byte{1, 0}) == 1
}
