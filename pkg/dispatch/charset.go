package dispatch

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeBody converts body from the named charset to UTF-8 text. Invalid
// UTF-8 input is repaired with replacement characters.
func decodeBody(body []byte, label string) (string, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf8", "utf-8":
		if utf8.Valid(body) && !bytes.HasPrefix(body, utf8BOM) {
			return string(body), nil
		}
		enc = unicode.UTF8BOM
	default:
		enc, _ = charset.Lookup(label)
		if enc == nil {
			return "", fmt.Errorf("unsupported encoding %q", label)
		}
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decoding %s body: %w", label, err)
	}
	return string(decoded), nil
}
