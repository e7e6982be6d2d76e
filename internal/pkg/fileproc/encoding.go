package fileproc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingUTF16  = "utf-16"
	EncodingLatin1 = "latin-1"
	EncodingCP1252 = "cp1252"
)

var (
	textEncodingOrder = []string{EncodingUTF8, EncodingUTF16, EncodingLatin1, EncodingCP1252}
	csvEncodingOrder  = []string{EncodingUTF8, EncodingLatin1, EncodingCP1252, EncodingUTF16}

	errNotUTF8 = errors.New("invalid utf-8 sequence")
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func decodeWith(name string, data []byte) (string, error) {
	switch name {
	case EncodingUTF8:
		data = bytes.TrimPrefix(data, bomUTF8)
		if !utf8.Valid(data) {
			return "", errNotUTF8
		}
		return string(data), nil
	case EncodingUTF16:
		// 没有 BOM 无法判断字节序，视为失败
		return decodeBytes(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
	case EncodingLatin1:
		return decodeBytes(charmap.ISO8859_1, data)
	case EncodingCP1252:
		return decodeBytes(charmap.Windows1252, data)
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}
}

func decodeBytes(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

// decodeText 按优先级尝试编码，返回首个成功的结果与编码名
// 带 UTF-16 BOM 的数据优先按 UTF-16 解码，避免被单字节编码误读
func decodeText(data []byte, order []string) (string, string, error) {
	if hasUTF16BOM(data) {
		reordered := []string{EncodingUTF16}
		for _, name := range order {
			if name != EncodingUTF16 {
				reordered = append(reordered, name)
			}
		}
		order = reordered
	}

	var errs []error
	for _, name := range order {
		text, err := decodeWith(name, data)
		if err == nil {
			return text, name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return "", "", fmt.Errorf("could not decode file with any supported encoding: %w", errors.Join(errs...))
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
}
