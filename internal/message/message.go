// Package message parses raw mail messages, plans the forwarding
// header rewrite and rebuilds the outbound bytes. Parsing keeps the
// exact input bytes recoverable: header fields remember their raw
// form and body bytes are never copied or altered.
package message

import (
	"fmt"
	"net/mail"
	"strings"
)

// HeaderField is one header field as it appeared on the wire. Raw
// holds the exact original bytes of the field: name, colon, value,
// folded continuation lines and the trailing line terminator.
type HeaderField struct {
	Name  string
	Value string
	Raw   []byte
}

// Message is the structured view over one raw mail message. Raw is
// the input byte stream and is never modified; Body and part payloads
// are slices into it.
type Message struct {
	Raw     []byte
	Headers []HeaderField
	Body    []byte
	EOL     string // "\r\n" or "\n", detected from the header separator

	MediaType string            // lower case; empty when Content-Type is absent or unusable
	Params    map[string]string // Content-Type parameters, lower-case keys
	Parts     []Part            // populated for multipart messages that could be split
}

// Part is a single part of a multipart body. Payload keeps the raw,
// still transfer-encoded bytes.
type Part struct {
	Headers   []HeaderField
	MediaType string
	Charset   string
	Encoding  string // Content-Transfer-Encoding, lower case
	Payload   []byte
}

// Header returns the value of the first field with the given name,
// matched case-insensitively. Empty string when absent.
func (m *Message) Header(name string) string {
	return headerValue(m.Headers, name)
}

// DecodedHeader returns Header(name) with RFC 2047 encoded-words
// decoded. The undecoded value is returned when decoding fails.
func (m *Message) DecodedHeader(name string) string {
	v := m.Header(name)
	if s, err := wordDecoder.DecodeHeader(v); err == nil {
		return s
	}
	return v
}

// FromAddress returns the first address of the first From field, with
// the display name decoded. A message without a usable From address
// cannot be forwarded.
func (m *Message) FromAddress() (*mail.Address, error) {
	i := m.index("From")
	if i < 0 {
		return nil, fmt.Errorf("%w: no From field", ErrHeader)
	}
	v := m.Headers[i].Value

	parser := mail.AddressParser{WordDecoder: &wordDecoder}
	list, err := parser.ParseList(v)
	if err != nil {
		// A single address can sometimes be salvaged when the list
		// form is not.
		addr, err2 := parser.Parse(v)
		if err2 != nil {
			return nil, fmt.Errorf("%w: unparseable From %q: %v", ErrHeader, v, err)
		}
		return addr, nil
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty From field", ErrHeader)
	}
	return list[0], nil
}

// Header returns the value of the first field with the given name.
func (p *Part) Header(name string) string {
	return headerValue(p.Headers, name)
}

// index returns the position of the first field with the given name,
// or -1.
func (m *Message) index(name string) int {
	for i := range m.Headers {
		if strings.EqualFold(m.Headers[i].Name, name) {
			return i
		}
	}
	return -1
}

func headerValue(fields []HeaderField, name string) string {
	for i := range fields {
		if strings.EqualFold(fields[i].Name, name) {
			return fields[i].Value
		}
	}
	return ""
}
