package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Event is the signed envelope exchanged with relays. ID and Sig are empty
// until the event has been signed; afterwards the event is immutable by
// convention and ID is the content address of the remaining fields.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Serialize returns the canonical byte sequence the event ID is computed
// over: the JSON array [0,pubkey,created_at,kind,tags,content]. Tag order
// and inner-tag order are preserved verbatim. The string escaping matches
// the protocol's reference serialization, so identical events produce
// identical bytes on every implementation.
func (ev Event) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteString(`[0,"`)
	buf.WriteString(ev.PubKey)
	buf.WriteString(`",`)
	buf.WriteString(strconv.FormatInt(ev.CreatedAt, 10))
	buf.WriteByte(',')
	buf.WriteString(strconv.Itoa(ev.Kind))
	buf.WriteByte(',')
	serializeTags(&buf, ev.Tags)
	buf.WriteByte(',')
	serializeString(&buf, ev.Content)
	buf.WriteByte(']')
	return buf.Bytes()
}

// GetID computes the event identifier: lowercase hex of the SHA-256 digest
// of the canonical serialization.
func (ev Event) GetID() string {
	sum := sha256.Sum256(ev.Serialize())
	return hex.EncodeToString(sum[:])
}

// TagValue returns the second element of the first tag whose first element
// equals name, or the empty string when no such tag exists.
func (ev Event) TagValue(name string) string {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1]
		}
	}
	return ""
}

func serializeTags(buf *bytes.Buffer, tags [][]string) {
	buf.WriteByte('[')
	for i, tag := range tags {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, item := range tag {
			if j > 0 {
				buf.WriteByte(',')
			}
			serializeString(buf, item)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
}

// serializeString writes s as a JSON string using the minimal escape set of
// the reference serializer: backslash, double quote, and the named control
// escapes, with \u00XX for the remaining control characters. Notably it does
// not escape HTML characters the way encoding/json does by default.
func serializeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\b':
			buf.WriteString(`\b`)
		case c == '\f':
			buf.WriteString(`\f`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c < 0x20:
			buf.WriteString(`\u00`)
			const hexDigits = "0123456789abcdef"
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}
