package loader

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encodings tried in order when reading delimited text.
var Encodings = []string{"utf-8-sig", "utf-8", "latin-1", "cp1252"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode converts raw bytes in the named encoding to a UTF-8 string.
func decode(raw []byte, enc string) (string, error) {
	switch enc {
	case "utf-8-sig":
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	case "utf-8":
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(raw), nil
	case "latin-1":
		b, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "cp1252":
		b, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", fmt.Errorf("unknown encoding %q", enc)
}

// Encode is the inverse of decode, used by writers that must round-trip.
func Encode(s string, enc string) ([]byte, error) {
	switch enc {
	case "utf-8-sig":
		return append(append([]byte(nil), utf8BOM...), s...), nil
	case "utf-8":
		return []byte(s), nil
	case "latin-1":
		return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	case "cp1252":
		return charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	}
	return nil, fmt.Errorf("unknown encoding %q", enc)
}
