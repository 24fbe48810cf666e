package message

import "strings"

// previewCap bounds how much decoded text Preview pulls out of a
// message before flattening it.
const previewCap = 4096

// Preview extracts a short plain-text rendition of the message body
// for logging. Multipart messages contribute their first text/plain
// part; simple messages contribute the whole body when it is textual.
// Anything else yields the empty string. Whitespace runs are
// collapsed so the result stays on one log line.
func Preview(m *Message) string {
	var text string
	switch {
	case len(m.Parts) > 0:
		for i := range m.Parts {
			p := &m.Parts[i]
			if p.MediaType == "" || p.MediaType == "text/plain" {
				text = p.Text()
				break
			}
		}
	case m.MediaType == "" || strings.HasPrefix(m.MediaType, "text/"):
		p := Part{
			Payload:  m.Body,
			Charset:  m.Params["charset"],
			Encoding: strings.ToLower(strings.TrimSpace(m.Header("Content-Transfer-Encoding"))),
		}
		text = p.Text()
	}
	if text == "" {
		return ""
	}
	if len(text) > previewCap {
		text = text[:previewCap]
	}
	return strings.Join(strings.Fields(text), " ")
}
