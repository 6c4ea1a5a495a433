package process

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw process output to a string. Valid UTF-8 passes through;
// anything else is decoded from the detected charset, falling back to
// ISO-8859-1, which maps every byte.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	if enc, _ := charset.Lookup(DetectCharset(data)); enc != nil {
		if out, err := enc.NewDecoder().Bytes(data); err == nil && utf8.Valid(out) {
			return string(out)
		}
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

// DetectCharset detects and returns the lowercase charset name of data
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
