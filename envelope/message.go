package envelope

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arnodel/xmtpdump/token"
)

// MessageOptions control how the base64 "message" field of an envelope is
// output.
type MessageOptions struct {
	// Decode adds messageBytesLen and messageBytesHex fields computed from
	// the decoded message.
	Decode bool

	// HexMax is the number of decoded bytes shown in messageBytesHex, 0
	// meaning all of them.
	HexMax int

	// MessageMax truncates the base64 text to that many characters, 0
	// meaning no truncation.
	MessageMax int

	// Omit removes the message field.
	Omit bool
}

// Apply transforms doc in place.  The decoded fields and the truncated text
// are both derived from the original message, and omission comes last.
func (o MessageOptions) Apply(doc *Document) {
	if msg, ok := doc.GetString(MessageKey); ok {
		if o.Decode {
			if raw, err := DecodeMessageBytes(msg); err != nil {
				doc.SetScalar(MessageBytesLenKey, token.NullScalar)
				doc.SetScalar(MessageBytesHexKey, token.NullScalar)
			} else {
				doc.SetScalar(MessageBytesLenKey, token.Int64Scalar(int64(len(raw))))
				doc.SetScalar(MessageBytesHexKey, token.StringScalar(HexPreview(raw, o.HexMax)))
			}
		}
		if truncated, ok := TruncateMessage(msg, o.MessageMax); ok {
			doc.SetScalar(MessageKey, token.StringScalar(truncated))
		}
	}
	if o.Omit {
		doc.Delete(MessageKey)
	}
}

// DecodeMessageBytes decodes standard base64, adding missing '=' padding
// first.
func DecodeMessageBytes(msg string) ([]byte, error) {
	if n := len(msg) % 4; n != 0 {
		msg += strings.Repeat("=", 4-n)
	}
	return base64.StdEncoding.DecodeString(msg)
}

// HexPreview returns the hex encoding of at most limit bytes of raw,
// followed by a count of the bytes left out.  A limit of 0 shows everything.
func HexPreview(raw []byte, limit int) string {
	if limit <= 0 || len(raw) <= limit {
		return hex.EncodeToString(raw)
	}
	return fmt.Sprintf("%s...(+%d bytes)", hex.EncodeToString(raw[:limit]), len(raw)-limit)
}

// TruncateMessage returns the first limit characters of msg followed by
// "...", if msg is longer than that.  It returns false when msg is left
// as is, which is always the case when limit is 0.
func TruncateMessage(msg string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(msg) <= limit {
		return msg, false
	}
	n := 0
	for i := range msg {
		if n == limit {
			return msg[:i] + "...", true
		}
		n++
	}
	return msg, false
}
