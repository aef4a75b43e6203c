package codec_test

import (
	"testing"

	"github.com/stackvity/utf-converter/pkg/converter/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

func TestNormalize_DetectorTable(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		kind     codec.Kind
	}{
		{"ascii", "utf-8", codec.KindUTF8},
		{"GB18030", "gb18030", codec.KindGB18030},
		{"GBK", "gb18030", codec.KindGB18030},
		{"GB2312", "gb18030", codec.KindGB18030},
		{"utf-8", "utf-8", codec.KindUTF8},
		{"UTF-8-SIG", "utf-8-with-bom", codec.KindUTF8BOM},
		{"UTF-16", "utf-16", codec.KindUTF16},
		{"ISO-8859-1", "iso-8859-1", codec.KindLatin1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codec.Normalize(tt.name)
			assert.Equal(t, tt.expected, got.String())
			assert.Equal(t, tt.kind, got.Kind())
		})
	}
}

func TestNormalize_UnmappedPassesThrough(t *testing.T) {
	for _, name := range []string{
		"BOCU-1", "EUC-JP", "HZ-GB-2312", "ISO-2022-CN", "ISO-2022-JP", "ISO-2022-KR",
		"SCSU", "UTF-1", "UTF-16BE", "UTF-16LE", "UTF-32", "UTF-32BE", "UTF-32LE",
		"UTF-7", "UTF-EBCDIC", "Shift_JIS", "windows-1252",
	} {
		got := codec.Normalize(name)
		assert.Equal(t, name, got.String(), "unmapped name must keep its case")
		assert.Equal(t, codec.KindOther, got.Kind())
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, name := range []string{
		"ascii", "GB18030", "GBK", "GB2312", "utf-8", "UTF-8-SIG", "UTF-16",
		"ISO-8859-1", "EUC-KR", "UTF-32LE", "Big5",
	} {
		once := codec.Normalize(name)
		twice := codec.Normalize(once.String())
		assert.True(t, once.Equal(twice), "normalize(normalize(%q)) = %q, want %q", name, twice, once)
		assert.Equal(t, once.String(), twice.String())
	}
}

func TestNormalize_EmptyIsUnknown(t *testing.T) {
	assert.True(t, codec.Normalize("").IsUnknown())
	assert.True(t, codec.Normalize("   ").IsUnknown())
	assert.True(t, codec.Other("").IsUnknown())
	assert.Equal(t, "", codec.Unknown.String())
}

func TestCodec_EqualAndFamily(t *testing.T) {
	assert.True(t, codec.Normalize("EUC-JP").Equal(codec.Normalize("euc-jp")))
	assert.False(t, codec.UTF8.Equal(codec.UTF8BOM), "BOM variant is a distinct codec")
	assert.False(t, codec.Other("utf-8x").Equal(codec.UTF8))

	assert.True(t, codec.UTF8.IsUTF())
	assert.True(t, codec.UTF8BOM.IsUTF())
	assert.True(t, codec.UTF16.IsUTF())
	assert.True(t, codec.Normalize("UTF-32BE").IsUTF())
	assert.False(t, codec.GB18030.IsUTF())
	assert.False(t, codec.Latin1.IsUTF())
	assert.False(t, codec.Unknown.IsUTF())
}

func TestParseTarget(t *testing.T) {
	for _, s := range []string{"utf-8", "UTF8", "utf_8"} {
		c, ok := codec.ParseTarget(s)
		require.True(t, ok, s)
		assert.Equal(t, codec.UTF8, c)
	}
	for _, s := range []string{"utf-8-with-bom", "utf-8-sig", "UTF_8_SIG"} {
		c, ok := codec.ParseTarget(s)
		require.True(t, ok, s)
		assert.Equal(t, codec.UTF8BOM, c)
	}
	_, ok := codec.ParseTarget("gb18030")
	assert.False(t, ok, "only UTF-8 variants are valid targets")
}

func TestDecode_RoundTripSupportedCodecs(t *testing.T) {
	tests := []struct {
		name  string
		codec codec.Codec
		text  string
		enc   func(string) ([]byte, error)
	}{
		{"gb18030", codec.GB18030, "你好，世界", func(s string) ([]byte, error) {
			return simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(s))
		}},
		{"gbk bytes read as gb18030", codec.Normalize("GBK"), "中文编码测试", func(s string) ([]byte, error) {
			return simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
		}},
		{"latin1", codec.Latin1, "Héllo, Lätin-1!", func(s string) ([]byte, error) {
			return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		}},
		{"utf-16 with bom", codec.UTF16, "Hello, UTF-16", func(s string) ([]byte, error) {
			return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
		}},
		{"utf-16be by name", codec.Normalize("UTF-16BE"), "Grüße", func(s string) ([]byte, error) {
			return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
		}},
		{"utf-8", codec.UTF8, "naïve café", func(s string) ([]byte, error) { return []byte(s), nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.enc(tt.text)
			require.NoError(t, err)

			text, err := codec.Decode(tt.codec, raw)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)

			out, err := codec.Encode(codec.UTF8, text)
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.text), out)
		})
	}
}

func TestDecode_RejectsInvalidInput(t *testing.T) {
	_, err := codec.Decode(codec.UTF8, []byte{0xC4, 0xE3, 0xBA, 0xC3, 0xFF})
	assert.ErrorIs(t, err, codec.ErrDecode)

	_, err = codec.Decode(codec.UTF8BOM, []byte("no mark here"))
	assert.ErrorIs(t, err, codec.ErrDecode)

	// 0xFF is never a valid GB18030 lead byte.
	_, err = codec.Decode(codec.GB18030, []byte{'a', 0xFF, 'b'})
	assert.ErrorIs(t, err, codec.ErrDecode)

	_, err = codec.Decode(codec.Unknown, []byte("x"))
	assert.ErrorIs(t, err, codec.ErrUnsupported)

	_, err = codec.Decode(codec.Other("no-such-charset"), []byte("x"))
	assert.ErrorIs(t, err, codec.ErrUnsupported)
}

func TestEncode_UTF8BOM(t *testing.T) {
	out, err := codec.Encode(codec.UTF8BOM, "hello")
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, codec.BOM...), "hello"...), out)

	out, err = codec.Encode(codec.UTF8BOM, "\uFEFFhello")
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, codec.BOM...), "hello"...), out, "mark must not be doubled")

	text, err := codec.Decode(codec.UTF8BOM, out)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestLookup_OtherNames(t *testing.T) {
	for _, name := range []string{"Shift_JIS", "EUC-KR", "windows-1252", "Big5", "KOI8-R"} {
		enc, err := codec.Lookup(codec.Normalize(name))
		require.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}
}
