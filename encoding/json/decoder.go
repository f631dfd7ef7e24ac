package json

import (
	"errors"
	"fmt"

	"github.com/arnodel/xmtpdump/internal/scanner"
	"github.com/arnodel/xmtpdump/token"
)

// ErrEmptyInput is returned when a line holds no JSON value at all.
var ErrEmptyInput = errors.New("empty input")

// A Decoder reads the JSON value held in a line and streams it as tokens.
type Decoder struct {
	scanr *scanner.Scanner
}

// NewDecoder sets up a new Decoder instance to read from the given input.
func NewDecoder(in []byte) *Decoder {
	return &Decoder{scanr: scanner.NewScanner(in)}
}

// DecodeValue parses the single JSON value in line and returns its tokens.
// Only whitespace may surround the value.
func DecodeValue(line []byte) ([]token.Token, error) {
	acc := token.NewAccumulatorStream()
	if err := NewDecoder(line).DecodeSingle(acc); err != nil {
		return nil, err
	}
	return acc.GetTokens(), nil
}

// DecodeSingle reads exactly one JSON value and streams it.  Trailing bytes
// other than whitespace are a syntax error.  Tokens may have been written to
// out when an error is returned.
func (d *Decoder) DecodeSingle(out token.WriteStream) error {
	if d.scanr.SkipSpaceAndPeek() == scanner.EOF {
		return ErrEmptyInput
	}
	if err := d.ParseValue(out); err != nil {
		return err
	}
	if d.scanr.SkipSpaceAndPeek() != scanner.EOF {
		return UnexpectedByte(d.scanr, "unexpected data after value")
	}
	return nil
}

// ParseValue reads a single JSON value and streams it.  It can return a
// non-nil error if the input is invalid JSON.
func (d *Decoder) ParseValue(out token.WriteStream) error {
	b := d.scanr.SkipSpaceAndPeek()
	switch b {
	case '"':
		s, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		out.Put(s)
		return nil
	case '[':
		return d.parseArray(out)
	case '{':
		return d.parseObject(out)
	case 't':
		if err := checkBytes(d.scanr, trueBytes); err != nil {
			return err
		}
		out.Put(token.TrueScalar)
		return nil
	case 'f':
		if err := checkBytes(d.scanr, falseBytes); err != nil {
			return err
		}
		out.Put(token.FalseScalar)
		return nil
	case 'n':
		if err := checkBytes(d.scanr, nullBytes); err != nil {
			return err
		}
		out.Put(token.NullScalar)
		return nil
	default:
		if b == '-' || scanner.IsDigit(b) {
			n, err := ParseNumber(d.scanr)
			if err != nil {
				return err
			}
			out.Put(n)
			return nil
		}
		return UnexpectedByte(d.scanr, "unexpected")
	}
}

func (d *Decoder) parseArray(out token.WriteStream) error {
	if err := ExpectByte(d.scanr, '['); err != nil {
		return err
	}
	out.Put(&token.StartArray{})
	if d.scanr.SkipSpaceAndPeek() == ']' {
		d.scanr.Read()
		out.Put(&token.EndArray{})
		return nil
	}
	for {
		if err := d.ParseValue(out); err != nil {
			return err
		}
		switch d.scanr.SkipSpaceAndPeek() {
		case ']':
			d.scanr.Read()
			out.Put(&token.EndArray{})
			return nil
		case ',':
			d.scanr.Read()
		default:
			return UnexpectedByte(d.scanr, "expected ']' or ',', got")
		}
	}
}

func (d *Decoder) parseObject(out token.WriteStream) error {
	if err := ExpectByte(d.scanr, '{'); err != nil {
		return err
	}
	out.Put(&token.StartObject{})
	if d.scanr.SkipSpaceAndPeek() == '}' {
		d.scanr.Read()
		out.Put(&token.EndObject{})
		return nil
	}
	for {
		if d.scanr.SkipSpaceAndPeek() != '"' {
			return UnexpectedByte(d.scanr, "expected key, got")
		}
		key, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		key.TypeAndFlags |= token.KeyMask
		out.Put(key)
		if d.scanr.SkipSpaceAndPeek() != ':' {
			return UnexpectedByte(d.scanr, "expected ':', got")
		}
		d.scanr.Read()
		if err := d.ParseValue(out); err != nil {
			return err
		}
		switch d.scanr.SkipSpaceAndPeek() {
		case '}':
			d.scanr.Read()
			out.Put(&token.EndObject{})
			return nil
		case ',':
			d.scanr.Read()
		default:
			return UnexpectedByte(d.scanr, "expected '}' or ',', got")
		}
	}
}

func ExpectByte(scanr *scanner.Scanner, xb byte) error {
	if b := scanr.Read(); b != xb {
		scanr.Back()
		return UnexpectedByte(scanr, "expected %q, got", xb)
	}
	return nil
}

// UnexpectedByte returns a syntax error about the next byte in the input.
func UnexpectedByte(scanr *scanner.Scanner, expected string, args ...interface{}) error {
	pos := scanr.CurrentPos()
	b := scanr.Peek()
	if b == scanner.EOF {
		return fmt.Errorf("syntax error at C%d: %s: <EOF>", pos.Col+1, fmt.Sprintf(expected, args...))
	}
	return fmt.Errorf("syntax error at C%d: %s: %q", pos.Col+1, fmt.Sprintf(expected, args...), b)
}

// ParseString parses a JSON string literal, keeping its bytes as they
// appear in the input.
func ParseString(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	if err := ExpectByte(scanr, '"'); err != nil {
		scanr.AbortToken()
		return nil, err
	}
	isUnescaped := true
	for {
		b := scanr.Read()
		switch b {
		case '\\':
			isUnescaped = false
			switch scanr.Read() {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				continue
			case 'u':
				for i := 0; i < 4; i++ {
					if !scanner.IsHexDigit(scanr.Read()) {
						scanr.Back()
						scanr.AbortToken()
						return nil, UnexpectedByte(scanr, "expected hex, got")
					}
				}
			default:
				scanr.Back()
				scanr.AbortToken()
				return nil, UnexpectedByte(scanr, "invalid escape character")
			}
		case '"':
			scalar := token.NewScalar(token.String, scanr.EndToken())
			if isUnescaped {
				scalar.TypeAndFlags |= token.UnescapedMask
			}
			return scalar, nil
		case scanner.EOF:
			scanr.Back()
			scanr.AbortToken()
			return nil, UnexpectedByte(scanr, "unterminated string")
		default:
			if scanner.IsCtrl(b) {
				scanr.Back()
				scanr.AbortToken()
				return nil, UnexpectedByte(scanr, "invalid control character in string")
			}
		}
	}
}

// ParseNumber parses a JSON number from the scanner.
func ParseNumber(scanr *scanner.Scanner) (*token.Scalar, error) {
	scanr.StartToken()
	var n int
	b := scanr.Read()

	// Sign part
	if b == '-' {
		b = scanr.Read()
	}

	// Integer part
	if b == '0' {
		b = scanr.Read()
	} else if b >= '1' && b <= '9' {
		b, _ = ReadDigits(scanr)
	} else {
		scanr.Back()
		scanr.AbortToken()
		return nil, UnexpectedByte(scanr, "expected digit, got")
	}

	// Fraction part
	if b == '.' {
		b, n = ReadDigits(scanr)
		if n == 0 {
			scanr.Back()
			scanr.AbortToken()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}

	// Exponent part
	if b == 'e' || b == 'E' {
		if b := scanr.Peek(); b == '-' || b == '+' {
			scanr.Read()
		}
		_, n = ReadDigits(scanr)
		if n == 0 {
			scanr.Back()
			scanr.AbortToken()
			return nil, UnexpectedByte(scanr, "expected digit, got")
		}
	}
	scanr.Back()
	return token.NewScalar(token.Number, scanr.EndToken()), nil
}

// ReadDigits reads digits and returns the first non-digit byte read along
// with the number of digits.
func ReadDigits(scanr *scanner.Scanner) (byte, int) {
	var n int
	for {
		b := scanr.Read()
		if !scanner.IsDigit(b) {
			return b, n
		}
		n++
	}
}

func checkBytes(scanr *scanner.Scanner, expected []byte) error {
	for _, xb := range expected {
		if err := ExpectByte(scanr, xb); err != nil {
			return err
		}
	}
	return nil
}

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)
