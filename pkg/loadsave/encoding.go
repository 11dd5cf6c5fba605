package loadsave

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names with special meaning.
const (
	// EncodingAuto detects the encoding from a byte order mark, falling back
	// to UTF-8 when the content is valid UTF-8 and Windows-1252 otherwise.
	EncodingAuto = "auto"

	// EncodingUTF8 is the encoding every document is saved in.
	EncodingUTF8 = "utf-8"
)

// ErrUnknownEncoding is returned for encoding names the WHATWG index lacks.
var ErrUnknownEncoding = errors.New("unknown encoding")

//nolint:gochecknoglobals // Byte order marks.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// LookupEncoding resolves a WHATWG encoding label such as "latin1" or
// "shift_jis" and returns the encoding with its canonical name.
func LookupEncoding(name string) (encoding.Encoding, string, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return enc, canonical, nil
}

// IsValidEncoding reports whether name is "auto" or a known label.
func IsValidEncoding(name string) bool {
	if name == "" || strings.EqualFold(name, EncodingAuto) {
		return true
	}
	_, _, err := LookupEncoding(name)
	return err == nil
}

// DetectEncoding picks the encoding of content.
func DetectEncoding(content []byte) (encoding.Encoding, string) {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return unicode.UTF8BOM, EncodingUTF8
	case bytes.HasPrefix(content, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	case bytes.HasPrefix(content, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	case utf8.Valid(content):
		return unicode.UTF8, EncodingUTF8
	default:
		return charmap.Windows1252, "windows-1252"
	}
}

// Decode converts content to text. name is an encoding label or "auto".
// It returns the text and the canonical name of the encoding used.
func Decode(content []byte, name string) (string, string, error) {
	var (
		enc       encoding.Encoding
		canonical string
	)

	if name == "" || strings.EqualFold(name, EncodingAuto) {
		enc, canonical = DetectEncoding(content)
	} else {
		var err error
		enc, canonical, err = LookupEncoding(name)
		if err != nil {
			return "", "", err
		}
	}

	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", canonical, err)
	}
	return strings.TrimPrefix(string(out), "\ufeff"), canonical, nil
}
