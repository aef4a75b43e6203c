package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrUnsupported indicates that no encoding implementation exists for a codec name.
	ErrUnsupported = errors.New("unsupported codec")

	// ErrDecode indicates that the bytes are not valid in the claimed codec.
	// Callers treat it as "the detector guessed wrong" for that file.
	ErrDecode = errors.New("cannot decode content")

	// ErrEncode indicates that text cannot be represented in the target codec.
	ErrEncode = errors.New("cannot encode content")
)

// BOM is the UTF-8 byte-order mark.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Lookup resolves a codec to its x/text encoding. Known kinds use a fixed table; other
// names go through the IANA index first and the WHATWG label table second.
func Lookup(c Codec) (xencoding.Encoding, error) {
	switch c.kind {
	case KindUTF8:
		return unicode.UTF8, nil
	case KindUTF8BOM:
		return unicode.UTF8BOM, nil
	case KindUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case KindGB18030:
		return simplifiedchinese.GB18030, nil
	case KindLatin1:
		return charmap.ISO8859_1, nil
	case KindOther:
		if enc, err := ianaindex.IANA.Encoding(c.raw); err == nil && enc != nil {
			return enc, nil
		}
		// charset.Lookup understands the looser labels browsers accept.
		if enc, _ := charset.Lookup(c.raw); enc != nil {
			return enc, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, c.raw)
	}
	return nil, fmt.Errorf("%w: no codec detected", ErrUnsupported)
}

// Decode strictly decodes data in codec c. The x/text decoders substitute U+FFFD for
// malformed input instead of failing, so any output carrying a replacement character must
// encode back to the exact input bytes to be accepted.
func Decode(c Codec, data []byte) (string, error) {
	switch c.kind {
	case KindUTF8:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid %s sequence", ErrDecode, NameUTF8)
		}
		return string(data), nil
	case KindUTF8BOM:
		if !bytes.HasPrefix(data, BOM) {
			return "", fmt.Errorf("%w: missing byte-order mark for %s", ErrDecode, NameUTF8BOM)
		}
		rest := data[len(BOM):]
		if !utf8.Valid(rest) {
			return "", fmt.Errorf("%w: invalid %s sequence", ErrDecode, NameUTF8BOM)
		}
		return string(rest), nil
	}

	enc, err := Lookup(c)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDecode, c, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, _, encErr := transform.Bytes(enc.NewEncoder(), out)
		if encErr != nil || !bytes.Equal(back, data) {
			return "", fmt.Errorf("%w: %s does not round-trip", ErrDecode, c)
		}
	}
	return string(out), nil
}

// Encode encodes text in codec c.
func Encode(c Codec, text string) ([]byte, error) {
	switch c.kind {
	case KindUTF8:
		return []byte(text), nil
	case KindUTF8BOM:
		text = strings.TrimPrefix(text, "\uFEFF") // never emit a doubled mark
		out := make([]byte, 0, len(BOM)+len(text))
		out = append(out, BOM...)
		return append(out, text...), nil
	}

	enc, err := Lookup(c)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncode, c, err)
	}
	return out, nil
}
