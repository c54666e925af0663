package ipc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"entropycopy/internal/config"
	"entropycopy/internal/transfer"
)

const (
	// RequestMax bounds the request path in text units.
	RequestMax = config.RequestMax
	// ResponseMax bounds the status line in text units.
	ResponseMax = config.ResponseMax

	// RequestBufferSize holds RequestMax UTF-16 code units.
	RequestBufferSize = RequestMax * 2
	// ResponseBufferSize holds ResponseMax UTF-16 code units.
	ResponseBufferSize = ResponseMax * 2
)

// Encoding identifies the text encoding of a payload.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
)

func (e Encoding) String() string {
	if e == UTF16LE {
		return "utf-16le"
	}
	return "utf-8"
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DetectEncoding guesses the payload encoding. A little-endian BOM, or two
// leading ASCII code units with zero high bytes, mark UTF-16LE.
func DetectEncoding(data []byte) Encoding {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return UTF16LE
	}
	if len(data) >= 4 && data[0] != 0 && data[1] == 0 && data[3] == 0 {
		return UTF16LE
	}
	return UTF8
}

// DecodeRequest turns the raw request buffer into a source path. Decoding
// stops at the first NUL and the result is clamped to RequestMax text units.
func DecodeRequest(data []byte) (string, Encoding) {
	enc := DetectEncoding(data)
	text := decode(data, enc)
	if idx := strings.IndexByte(text, 0); idx >= 0 {
		text = text[:idx]
	}
	return clampUnits(text, RequestMax, enc), enc
}

// DecodeResponse is the client-side counterpart of EncodeResponse.
func DecodeResponse(data []byte) string {
	text := decode(data, DetectEncoding(data))
	return strings.TrimRight(text, "\x00")
}

func decode(data []byte, enc Encoding) string {
	if enc != UTF16LE {
		if idx := bytes.IndexByte(data, 0); idx >= 0 {
			data = data[:idx]
		}
		return strings.ToValidUTF8(string(data), "�")
	}
	data = bytes.TrimPrefix(data, []byte{0xFF, 0xFE})
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	decoded, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// EncodeRequest renders a path for the wire. Paths longer than RequestMax text
// units are rejected rather than silently truncated.
func EncodeRequest(path string, enc Encoding) ([]byte, error) {
	if n := units(path, enc); n > RequestMax {
		return nil, fmt.Errorf("request path is %d text units, limit is %d", n, RequestMax)
	}
	return encode(path, enc), nil
}

// EncodeResponse renders a status line for the wire, truncated to limit text
// units.
func EncodeResponse(text string, enc Encoding, limit int) []byte {
	if limit <= 0 || limit > ResponseMax {
		limit = ResponseMax
	}
	return encode(clampUnits(text, limit, enc), enc)
}

func encode(text string, enc Encoding) []byte {
	if enc != UTF16LE {
		return []byte(text)
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return out
}

// units counts text units: bytes for UTF-8, code units for UTF-16.
func units(text string, enc Encoding) int {
	if enc != UTF16LE {
		return len(text)
	}
	n := 0
	for _, r := range text {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func clampUnits(text string, limit int, enc Encoding) string {
	if units(text, enc) <= limit {
		return text
	}
	n := 0
	for i, r := range text {
		width := utf8.RuneLen(r)
		if enc == UTF16LE {
			width = 1
			if r >= 0x10000 {
				width = 2
			}
		}
		if n+width > limit {
			return text[:i]
		}
		n += width
	}
	return text
}

// FormatResponse renders a transfer outcome as the status line sent to the
// client.
func FormatResponse(result transfer.Result, destDir string) string {
	if result.Succeeded {
		return fmt.Sprintf("[INFO] %d files copied to %s", result.FilesCopied, destDir)
	}
	return fmt.Sprintf("[ERROR] %s [%s]", result.Message, result.SysErr)
}
