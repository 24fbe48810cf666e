package message

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrStructure is returned by Rebuild when the message structure
// declared in the header cannot be matched against the body, so the
// message cannot be safely reassembled.
var ErrStructure = errors.New("message structure inconsistent")

// Outbound is a rebuilt message ready for dispatch. Data is the
// complete raw message; Recipient is the single delivery address. The
// To and Cc headers inside Data are display-only and never drive
// routing.
type Outbound struct {
	Data      []byte
	Recipient string
}

// Rebuild serializes msg with the plan's replacements applied. Fields
// not targeted by the plan are emitted from their original raw bytes,
// in their original order, duplicates included. From is replaced at
// its original position; Reply-To is replaced in place or, when the
// original had none, inserted right after From. The body bytes are
// appended unchanged.
//
// The declared multipart structure is verified first: a multipart
// Content-Type whose boundary is missing from the header or not
// properly opened and closed in the body fails with ErrStructure
// rather than producing a message no receiver could walk.
func Rebuild(msg *Message, plan *RewritePlan) (*Outbound, error) {
	if err := verifyStructure(msg); err != nil {
		return nil, err
	}

	fromAt := msg.index("From")
	if fromAt < 0 {
		return nil, fmt.Errorf("%w: no From field", ErrHeader)
	}
	replyToAt := msg.index("Reply-To")
	subjectAt := -1
	if plan.Subject != "" {
		subjectAt = msg.index("Subject")
	}

	eol := msg.EOL
	var buf bytes.Buffer
	buf.Grow(len(msg.Raw) + 256)

	for i := range msg.Headers {
		f := &msg.Headers[i]
		switch {
		case i == fromAt:
			writeField(&buf, "From", plan.From, eol)
			if replyToAt < 0 {
				writeField(&buf, "Reply-To", plan.ReplyTo, eol)
			}
			if plan.Subject != "" && subjectAt < 0 {
				writeField(&buf, "Subject", plan.Subject, eol)
			}
		case i == replyToAt:
			writeField(&buf, "Reply-To", plan.ReplyTo, eol)
		case i == subjectAt:
			writeField(&buf, "Subject", plan.Subject, eol)
		case strings.EqualFold(f.Name, "From"), strings.EqualFold(f.Name, "Reply-To"):
			// Extra occurrences of the rewritten identity fields are
			// dropped, never forwarded with the original sender in
			// them.
		case plan.Subject != "" && strings.EqualFold(f.Name, "Subject"):
			// Same for extra Subject fields once the subject is
			// replaced.
		default:
			buf.Write(f.Raw)
		}
	}

	buf.WriteString(eol)
	buf.Write(msg.Body)

	out := buf.Bytes()
	if err := verifyRebuilt(out, msg); err != nil {
		return nil, err
	}

	return &Outbound{Data: out, Recipient: plan.Recipient}, nil
}

func writeField(buf *bytes.Buffer, name, value, eol string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString(eol)
}

// verifyStructure checks that a multipart declaration in the header
// is honored by the body.
func verifyStructure(msg *Message) error {
	if !strings.HasPrefix(msg.MediaType, "multipart/") {
		return nil
	}
	boundary := msg.Params["boundary"]
	if boundary == "" {
		return fmt.Errorf("%w: multipart content-type without a boundary parameter", ErrStructure)
	}
	open, closed := boundaryLines(msg.Body, boundary)
	if !open {
		return fmt.Errorf("%w: boundary %q never opens a part", ErrStructure, boundary)
	}
	if !closed {
		return fmt.Errorf("%w: boundary %q is never closed", ErrStructure, boundary)
	}
	return nil
}

// boundaryLines scans body lines for the delimiter and terminator
// forms of the boundary marker.
func boundaryLines(body []byte, boundary string) (open, closed bool) {
	delim := []byte("--" + boundary)
	for off := 0; off < len(body); {
		nl := bytes.IndexByte(body[off:], '\n')
		end := len(body)
		if nl >= 0 {
			end = off + nl + 1
		}
		line := bytes.TrimRight(body[off:end], " \t\r\n")
		if bytes.HasPrefix(line, delim) {
			rest := line[len(delim):]
			switch {
			case len(rest) == 0:
				open = true
			case bytes.Equal(rest, []byte("--")):
				closed = true
			}
		}
		off = end
	}
	return open, closed
}

// verifyRebuilt confirms the serialized message still has its
// header/body separator and carries the original body bytes
// untouched.
func verifyRebuilt(out []byte, msg *Message) error {
	if !bytes.Contains(out, []byte(msg.EOL+msg.EOL)) {
		return fmt.Errorf("%w: rebuilt message lost its header separator", ErrStructure)
	}
	if !bytes.HasSuffix(out, msg.Body) {
		return fmt.Errorf("%w: rebuilt body differs from the original", ErrStructure)
	}
	return nil
}
