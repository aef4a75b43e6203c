// Package codec defines the canonical codec identifiers used across the converter
// and resolves them to golang.org/x/text encodings.
package codec

import "strings"

// Kind enumerates the codecs the converter knows by name. Anything a detector reports
// outside this set is carried as KindOther with its raw name.
type Kind int

const (
	KindUnknown Kind = iota // Zero value: no usable detection
	KindUTF8
	KindUTF8BOM
	KindUTF16
	KindGB18030
	KindLatin1
	KindOther
)

// Canonical identifiers for the known kinds.
const (
	NameUTF8    = "utf-8"
	NameUTF8BOM = "utf-8-with-bom"
	NameUTF16   = "utf-16"
	NameGB18030 = "gb18030"
	NameLatin1  = "iso-8859-1"
)

// Codec is a canonical codec identifier. The zero value is Unknown.
type Codec struct {
	kind Kind
	raw  string // Only set for KindOther, kept exactly as received
}

// Predefined codecs.
var (
	Unknown = Codec{}
	UTF8    = Codec{kind: KindUTF8}
	UTF8BOM = Codec{kind: KindUTF8BOM}
	UTF16   = Codec{kind: KindUTF16}
	GB18030 = Codec{kind: KindGB18030}
	Latin1  = Codec{kind: KindLatin1}
)

// detectorNames maps detector-emitted charset names to canonical codecs.
// Keys are stored lower-cased; lookups are case-insensitive.
var detectorNames = map[string]Codec{
	// ASCII is a subset of UTF-8, treat it as such so it is never re-encoded.
	"ascii": UTF8,

	"gb18030": GB18030,
	// Detectors classify most GBK text as GB2312; gb18030 is a superset of both.
	"gbk":    GB18030,
	"gb2312": GB18030,

	"utf-8":      UTF8,
	"utf-8-sig":  UTF8BOM,
	"utf-16":     UTF16,
	"iso-8859-1": Latin1,

	// Canonical identifiers resolve to themselves.
	NameUTF8BOM: UTF8BOM,
}

// Other wraps a name outside the known set. Empty names yield Unknown.
func Other(name string) Codec {
	if strings.TrimSpace(name) == "" {
		return Unknown
	}
	return Codec{kind: KindOther, raw: name}
}

// Normalize maps a detector charset name onto its canonical codec. Names outside the
// table pass through unchanged.
func Normalize(name string) Codec {
	if strings.TrimSpace(name) == "" {
		return Unknown
	}
	if c, ok := detectorNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return Other(name)
}

// ParseTarget resolves a user-supplied target codec. Only the UTF-8 variants are
// valid conversion targets.
func ParseTarget(s string) (Codec, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8", "utf_8":
		return UTF8, true
	case "utf-8-with-bom", "utf-8-bom", "utf-8-sig", "utf_8_sig", "utf8bom":
		return UTF8BOM, true
	}
	return Unknown, false
}

// Kind returns the codec kind.
func (c Codec) Kind() Kind { return c.kind }

// IsUnknown reports whether c is the Unknown sentinel.
func (c Codec) IsUnknown() bool { return c.kind == KindUnknown }

// String returns the canonical identifier, the raw name for KindOther, or "" for Unknown.
func (c Codec) String() string {
	switch c.kind {
	case KindUTF8:
		return NameUTF8
	case KindUTF8BOM:
		return NameUTF8BOM
	case KindUTF16:
		return NameUTF16
	case KindGB18030:
		return NameGB18030
	case KindLatin1:
		return NameLatin1
	case KindOther:
		return c.raw
	}
	return ""
}

// Equal compares codecs; names of KindOther codecs compare case-insensitively.
func (c Codec) Equal(o Codec) bool {
	if c.kind != o.kind {
		return false
	}
	if c.kind == KindOther {
		return strings.EqualFold(c.raw, o.raw)
	}
	return true
}

// IsUTF reports whether the codec belongs to the UTF family.
func (c Codec) IsUTF() bool {
	switch c.kind {
	case KindUTF8, KindUTF8BOM, KindUTF16:
		return true
	case KindOther:
		return strings.HasPrefix(strings.ToLower(c.raw), "utf")
	}
	return false
}

// MarshalText lets codecs appear as plain strings in JSON and TOML reports.
func (c Codec) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
