package encoding

import (
	"bytes"

	"github.com/go-enry/go-enry/v2"
	"github.com/h2non/filetype"
)

const (
	// sniffLen is the number of leading bytes handed to the magic-number matchers.
	sniffLen = 262
)

// unicodeBOMs are byte-order marks of encodings whose text legitimately contains NUL bytes.
var unicodeBOMs = [][]byte{
	{0x00, 0x00, 0xFE, 0xFF}, // UTF-32BE
	{0xFF, 0xFE, 0x00, 0x00}, // UTF-32LE
	{0xFE, 0xFF},             // UTF-16BE
	{0xFF, 0xFE},             // UTF-16LE
}

// IsBinary reports whether content looks like binary data rather than text in some codec.
// A known magic number (images, archives, executables, ...) is decisive; otherwise the
// NUL-byte heuristic from go-enry decides. UTF-16 and UTF-32 text announced by a BOM is
// never binary.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	for _, bom := range unicodeBOMs {
		if bytes.HasPrefix(content, bom) {
			return false
		}
	}

	head := content[:min(len(content), sniffLen)]
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return true
	}
	return enry.IsBinary(content)
}
