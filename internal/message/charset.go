package message

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"strings"

	"github.com/wlynxg/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// wordDecoder decodes RFC 2047 encoded-words, resolving charsets
// through the IANA index.
var wordDecoder = mime.WordDecoder{
	CharsetReader: func(charset string, r io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "", "us-ascii", "utf-8":
			return r, nil
		}
		enc, _ := ianaindex.MIME.Encoding(charset)
		if enc == nil {
			enc, _ = ianaindex.IANA.Encoding(charset)
		}
		if enc == nil {
			return r, fmt.Errorf("unknown charset %q", charset)
		}
		return enc.NewDecoder().Reader(r), nil
	},
}

// Text returns the part payload as UTF-8 text: the transfer encoding
// is undone and the charset converted. Any decode problem degrades to
// returning the bytes as they are instead of failing.
func (p *Part) Text() string {
	payload := p.Payload
	switch p.Encoding {
	case "base64":
		if b, err := base64.StdEncoding.DecodeString(stripSpace(string(payload))); err == nil {
			payload = b
		}
	case "quoted-printable":
		if b, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(payload))); err == nil {
			payload = b
		}
	}

	r, err := decodeCharset(p.Charset, bytes.NewReader(payload))
	if err != nil {
		return string(payload)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(payload)
	}
	return string(decoded)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// decodeCharset converts input to UTF-8. An empty charset is sniffed
// with chardet; an unknown or undetectable charset passes the input
// through unchanged.
func decodeCharset(charset string, input io.Reader) (io.Reader, error) {
	if charset == "" {
		detector := chardet.NewUniversalDetector(0)

		buffer := make([]byte, 4096)
		var totalData []byte

		for {
			n, readErr := input.Read(buffer)

			if n > 0 {
				totalData = append(totalData, buffer[:n]...)
				detector.Feed(buffer[:n])
			}

			if readErr == io.EOF {
				break
			}

			if readErr != nil {
				return nil, fmt.Errorf("error reading input: %v", readErr)
			}
		}

		result := detector.GetResult()

		charset = result.Encoding // use detected charset
		input = bytes.NewReader(totalData)
	}

	var decoder *encoding.Decoder

	switch strings.ToLower(charset) {
	case "windows-1252":
		decoder = charmap.Windows1252.NewDecoder()
	case "iso-8859-1":
		decoder = charmap.ISO8859_1.NewDecoder()
	case "iso-8859-15":
		decoder = charmap.ISO8859_15.NewDecoder()
	case "windows-1250":
		decoder = charmap.Windows1250.NewDecoder()
	case "", "utf-8", "us-ascii":
		return input, nil // already UTF-8 compatible
	default:
		// try to find charset using IANA registry as fallback
		enc, err := ianaindex.IANA.Encoding(charset)
		if err != nil || enc == nil {
			return input, nil // fallback to default (assume UTF-8)
		}
		decoder = enc.NewDecoder()
	}

	// convert to UTF-8
	return transform.NewReader(input, decoder), nil
}
