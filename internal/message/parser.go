package message

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
)

var (
	// ErrHeaderSeparator is returned when the message has no blank
	// line separating the header section from the body.
	ErrHeaderSeparator = errors.New("no header separator found")
	// ErrHeader is returned for a header section that cannot be split
	// into fields.
	ErrHeader = errors.New("bad message header")
)

var (
	crlf2x = []byte("\r\n\r\n")
	lf2x   = []byte("\n\n")
)

// Parse builds the structured view over raw. The input is never
// modified and the returned message aliases it.
//
// Parse fails when raw has no blank-line header/body separator, or
// when a line in the header section is neither a field start nor a
// folded continuation. Anything below that structural minimum is
// tolerated: an unusable Content-Type or a multipart body whose
// markers cannot be matched leaves the body opaque instead of
// failing the parse.
func Parse(raw []byte) (*Message, error) {
	m := &Message{Raw: raw}

	var hdr []byte
	crlfAt := bytes.Index(raw, crlf2x)
	lfAt := bytes.Index(raw, lf2x)
	switch {
	case bytes.HasPrefix(raw, []byte("\r\n")):
		m.EOL = "\r\n"
		m.Body = raw[2:]
	case bytes.HasPrefix(raw, []byte("\n")):
		m.EOL = "\n"
		m.Body = raw[1:]
	case crlfAt >= 0 && (lfAt < 0 || crlfAt < lfAt):
		m.EOL = "\r\n"
		hdr = raw[:crlfAt+2]
		m.Body = raw[crlfAt+4:]
	case lfAt >= 0:
		m.EOL = "\n"
		hdr = raw[:lfAt+1]
		m.Body = raw[lfAt+2:]
	default:
		return nil, ErrHeaderSeparator
	}

	fields, err := parseFields(hdr)
	if err != nil {
		return nil, err
	}
	m.Headers = fields

	if ct := m.Header("Content-Type"); ct != "" {
		if mt, params, err := mime.ParseMediaType(ct); err == nil {
			m.MediaType = strings.ToLower(mt)
			m.Params = params
		}
	}

	if strings.HasPrefix(m.MediaType, "multipart/") {
		if boundary := m.Params["boundary"]; boundary != "" {
			m.Parts = splitParts(m.Body, boundary)
		}
	}

	return m, nil
}

// parseFields splits a header block into fields, keeping the exact
// raw bytes of each field alongside the parsed name and unfolded
// value. hdr includes the line terminator of the last field but not
// the blank separator line.
func parseFields(hdr []byte) ([]HeaderField, error) {
	var fields []HeaderField
	for off := 0; off < len(hdr); {
		if hdr[off] == ' ' || hdr[off] == '\t' {
			return nil, fmt.Errorf("%w: continuation line without a preceding field", ErrHeader)
		}

		// A field runs until the next line that does not start with
		// folding whitespace.
		end := off
		for end < len(hdr) {
			nl := bytes.IndexByte(hdr[end:], '\n')
			if nl < 0 {
				end = len(hdr)
				break
			}
			end += nl + 1
			if end >= len(hdr) || (hdr[end] != ' ' && hdr[end] != '\t') {
				break
			}
		}

		raw := hdr[off:end]
		first := raw
		if nl := bytes.IndexByte(first, '\n'); nl >= 0 {
			first = first[:nl]
		}
		colon := bytes.IndexByte(first, ':')
		if colon < 0 {
			return nil, fmt.Errorf("%w: no colon in %q", ErrHeader, string(bytes.TrimRight(first, "\r")))
		}
		name := strings.TrimRight(string(raw[:colon]), " \t")
		if name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrHeader)
		}

		fields = append(fields, HeaderField{
			Name:  name,
			Value: unfold(raw[colon+1:]),
			Raw:   raw,
		})
		off = end
	}
	return fields, nil
}

// unfold flattens a possibly folded field value to a single line with
// the surrounding whitespace trimmed.
func unfold(b []byte) string {
	lines := strings.Split(string(b), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.Trim(l, " \t\r")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}

// splitParts enumerates the parts of a multipart body without
// touching any payload bytes. A body whose boundary markers cannot be
// matched up yields no parts and the caller treats the body as
// opaque; the inconsistency is reported when the message is rebuilt,
// not here.
func splitParts(body []byte, boundary string) []Part {
	delim := []byte("--" + boundary)

	type marker struct {
		start, end int
		closing    bool
	}
	var markers []marker

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
				markers = append(markers, marker{off, end, false})
			case bytes.Equal(rest, []byte("--")):
				markers = append(markers, marker{off, end, true})
			}
		}
		if markers != nil && markers[len(markers)-1].closing {
			break
		}
		off = end
	}

	if len(markers) < 2 || !markers[len(markers)-1].closing {
		return nil
	}

	parts := make([]Part, 0, len(markers)-1)
	for i := 0; i+1 < len(markers); i++ {
		seg := body[markers[i].end:markers[i+1].start]
		// The line break before a boundary line belongs to the
		// boundary, not to the part.
		seg = trimTrailingEOL(seg)
		p, ok := parsePart(seg)
		if !ok {
			return nil
		}
		parts = append(parts, p)
	}
	return parts
}

func trimTrailingEOL(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}

// parsePart splits one multipart segment into its header fields and
// payload. ok is false when the segment cannot be split, in which
// case the whole enumeration is abandoned.
func parsePart(seg []byte) (Part, bool) {
	var hdr, payload []byte
	crlfAt := bytes.Index(seg, crlf2x)
	lfAt := bytes.Index(seg, lf2x)
	switch {
	case bytes.HasPrefix(seg, []byte("\r\n")):
		payload = seg[2:]
	case bytes.HasPrefix(seg, []byte("\n")):
		payload = seg[1:]
	case crlfAt >= 0 && (lfAt < 0 || crlfAt < lfAt):
		hdr = seg[:crlfAt+2]
		payload = seg[crlfAt+4:]
	case lfAt >= 0:
		hdr = seg[:lfAt+1]
		payload = seg[lfAt+2:]
	default:
		return Part{}, false
	}

	fields, err := parseFields(hdr)
	if err != nil {
		return Part{}, false
	}

	p := Part{Headers: fields, Payload: payload}
	if ct := p.Header("Content-Type"); ct != "" {
		if mt, params, err := mime.ParseMediaType(ct); err == nil {
			p.MediaType = strings.ToLower(mt)
			p.Charset = params["charset"]
		}
	}
	p.Encoding = strings.ToLower(strings.TrimSpace(p.Header("Content-Transfer-Encoding")))
	return p, true
}
