package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// A Token is an item in a stream that encodes a JSON value
// For example, the envelope
//
//	{"contentTopic": "/xmtp/0/foo", "message": "aGVsbG8="}
//
// would be represented by the stream of Token (in pseudocode for
// clarity):
//
//	{                 -> StartObject
//	"contentTopic":   -> Key("contentTopic")
//	"/xmtp/0/foo",    -> Scalar("/xmtp/0/foo", String)
//	"message":        -> Key("message")
//	"aGVsbG8="        -> Scalar("aGVsbG8=", String)
//	}                 -> EndObject
//
// Keeping a record as a token sequence preserves the order of its keys and
// the literal form of the values we do not touch.
type Token interface {
	fmt.Stringer
}

// StartObject represents the start of a JSON object (introduced by '{').
type StartObject struct{}

func (s *StartObject) String() string {
	return "StartObject"
}

var _ Token = &StartObject{}

// EndObject represents the end of a JSON object (introduced by '}')
type EndObject struct{}

func (e *EndObject) String() string {
	return "EndObject"
}

var _ Token = &EndObject{}

// StartArray represents the start of a JSON array (introduced by '[').
type StartArray struct{}

func (s *StartArray) String() string {
	return "StartArray"
}

var _ Token = &StartArray{}

// EndArray represents the end of a JSON array (introduced by ']')
type EndArray struct{}

func (e *EndArray) String() string {
	return "EndArray"
}

var _ Token = &EndArray{}

// Scalar is the type used to represent all scalar JSON values, i.e.
// - strings
// - numbers
// - booleans (to values)
// - null (a single value)
//
// The type is encoded in the TypeAndFlags field, while the Bytes fields
// contains the literal representation of the value as found in the input.
type Scalar struct {

	// Literal representation of the value, e.g.
	// - the string "foo" is represented as []byte("\"foo\"")
	// - the number 123.5 is represented as []byte("123.5")
	// - the boolean true is represented as []byte("true")
	Bytes []byte

	// Type of the value, plus the Key and Unescaped flags
	TypeAndFlags uint8
}

func NewScalar(tp ScalarType, bytes []byte) *Scalar {
	return &Scalar{
		Bytes:        bytes,
		TypeAndFlags: uint8(tp),
	}
}

// KeyScalar returns a key token for the object member name.
func KeyScalar(name string) *Scalar {
	s := StringScalar(name)
	s.TypeAndFlags |= KeyMask
	return s
}

func (s *Scalar) Type() ScalarType {
	return ScalarType(s.TypeAndFlags & TypeMask)
}

func (s *Scalar) IsKey() bool {
	return KeyMask&s.TypeAndFlags != 0
}

// IsUnescaped is true for strings whose literal contains no escape
// sequence, so the bytes between the quotes are the string itself.
func (s *Scalar) IsUnescaped() bool {
	return UnescapedMask&s.TypeAndFlags != 0
}

func (s *Scalar) String() string {
	return fmt.Sprintf("Scalar(%s)", s.Bytes)
}

// EqualsString is a convenience method to check if a Scalar represents the
// passed string.
func (s *Scalar) EqualsString(str string) bool {
	if s.Type() != String {
		return false
	}
	return s.ToString() == str
}

// ToString panics if s is not a string
func (s *Scalar) ToString() string {
	if s.Type() != String {
		panic("not a string scalar")
	}
	if s.IsUnescaped() {
		return string(s.Bytes[1 : len(s.Bytes)-1])
	}
	var str string
	if err := json.Unmarshal(s.Bytes, &str); err != nil {
		panic(err)
	}
	return str
}

// IsPrintableASCII reports whether the literal only contains bytes in the
// range ' '..'~', in which case it can be output verbatim when non-ASCII
// characters must be escaped.
func (s *Scalar) IsPrintableASCII() bool {
	for _, b := range s.Bytes {
		if b < ' ' || b > '~' {
			return false
		}
	}
	return true
}

// ScalarType encodes the four possible JSON scalar types.
type ScalarType uint8

const (
	Null    ScalarType = 0x0 // the type of JSON null
	Boolean ScalarType = 0x1 // a JSON boolean
	Number  ScalarType = 0x2 // a JSON number
	String  ScalarType = 0x3 // a JSON string
)

const (
	TypeMask      = 0b0011
	KeyMask       = 0b0100
	UnescapedMask = 0b1000
)

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)

var (
	TrueScalar  = NewScalar(Boolean, trueBytes)
	FalseScalar = NewScalar(Boolean, falseBytes)
	NullScalar  = NewScalar(Null, nullBytes)
)

// StringScalar returns the string literal for str, with every character
// outside printable ASCII escaped.
func StringScalar(str string) *Scalar {
	return asciiStringScalar(AppendQuotedASCII(nil, str))
}

// ASCII returns s if it is not a string or its literal is already plain
// printable ASCII with no escapes.  Otherwise it returns a string scalar
// with the same flags whose literal is re-encoded with every character
// outside printable ASCII escaped.  Unlike StringScalar(s.ToString()),
// escapes of unpaired surrogates are kept.
func (s *Scalar) ASCII() *Scalar {
	if s.Type() != String || s.IsUnescaped() && s.IsPrintableASCII() {
		return s
	}
	ascii := asciiStringScalar(appendLiteralASCII(nil, s.Bytes))
	ascii.TypeAndFlags |= s.TypeAndFlags & KeyMask
	return ascii
}

func asciiStringScalar(b []byte) *Scalar {
	s := NewScalar(String, b)
	if bytes.IndexByte(b[1:len(b)-1], '\\') < 0 {
		s.TypeAndFlags |= UnescapedMask
	}
	return s
}

func Int64Scalar(n int64) *Scalar {
	return NewScalar(Number, []byte(strconv.FormatInt(n, 10)))
}

const hexDigits = "0123456789abcdef"

// AppendQuotedASCII appends the JSON string literal for str to dst.  Only
// printable ASCII is output as is, the usual short escapes are used for
// quotes, backslashes and common control characters and anything else
// becomes \uXXXX (a surrogate pair outside the basic multilingual plane).
// Invalid UTF-8 is output as \ufffd.
func AppendQuotedASCII(dst []byte, str string) []byte {
	dst = append(dst, '"')
	for _, r := range str {
		dst = appendRuneASCII(dst, r)
	}
	return append(dst, '"')
}

// appendLiteralASCII appends the re-encoding of a well-formed JSON string
// literal to dst.
func appendLiteralASCII(dst []byte, lit []byte) []byte {
	dst = append(dst, '"')
	lit = lit[1 : len(lit)-1]
	for len(lit) > 0 {
		if lit[0] != '\\' {
			r, n := utf8.DecodeRune(lit)
			dst = appendRuneASCII(dst, r)
			lit = lit[n:]
			continue
		}
		if lit[1] != 'u' {
			dst = appendRuneASCII(dst, shortEscapes[lit[1]])
			lit = lit[2:]
			continue
		}
		r := hexRune(lit[2:6])
		lit = lit[6:]
		if !utf16.IsSurrogate(r) {
			dst = appendRuneASCII(dst, r)
			continue
		}
		if r < 0xDC00 && len(lit) >= 6 && lit[0] == '\\' && lit[1] == 'u' {
			if pr := utf16.DecodeRune(r, hexRune(lit[2:6])); pr != utf8.RuneError {
				dst = appendRuneASCII(dst, pr)
				lit = lit[6:]
				continue
			}
		}
		dst = appendUnicodeEscape(dst, r)
	}
	return append(dst, '"')
}

var shortEscapes = [256]rune{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func hexRune(h []byte) rune {
	var r rune
	for _, c := range h {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		}
	}
	return r
}

func appendRuneASCII(dst []byte, r rune) []byte {
	switch {
	case r == '"':
		return append(dst, '\\', '"')
	case r == '\\':
		return append(dst, '\\', '\\')
	case r == '\n':
		return append(dst, '\\', 'n')
	case r == '\r':
		return append(dst, '\\', 'r')
	case r == '\t':
		return append(dst, '\\', 't')
	case r == '\b':
		return append(dst, '\\', 'b')
	case r == '\f':
		return append(dst, '\\', 'f')
	case r >= ' ' && r <= '~':
		return append(dst, byte(r))
	case r > 0xFFFF:
		r1, r2 := utf16.EncodeRune(r)
		dst = appendUnicodeEscape(dst, r1)
		return appendUnicodeEscape(dst, r2)
	default:
		// Also covers utf8.RuneError produced by invalid input
		return appendUnicodeEscape(dst, r)
	}
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	if r > utf8.MaxRune {
		r = utf8.RuneError
	}
	return append(dst, '\\', 'u',
		hexDigits[r>>12&0xF],
		hexDigits[r>>8&0xF],
		hexDigits[r>>4&0xF],
		hexDigits[r&0xF],
	)
}
