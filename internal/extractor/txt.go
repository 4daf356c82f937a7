package extractor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// extractTXT decodes arbitrary bytes as text. Decoding never fails:
// undecodable sequences are dropped rather than surfaced, so the only
// failure mode is a document with no text in it.
func extractTXT(data []byte) (*Result, error) {
	text := cleanText(decodeText(data))
	if text == "" {
		return nil, failf(ReasonEmptyDocument, "no text could be extracted from file")
	}
	return &Result{Text: text}, nil
}

// decodeText sniffs BOMs for UTF-8/UTF-16, then tries plain UTF-8, then the
// common single-byte legacy encodings. The final fallback drops whatever
// byte sequences still fail to decode.
func decodeText(data []byte) string {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return strings.ToValidUTF8(string(data[3:]), "")
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, _, err := transform.Bytes(decoder, data); err == nil {
			return string(decoded)
		}
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		if decoded, _, err := transform.Bytes(decoder, data); err == nil {
			return string(decoded)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		if decoded, _, err := transform.Bytes(cm.NewDecoder(), data); err == nil {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(data), "")
}

// cleanText normalizes line endings, strips NUL bytes and trims every line,
// dropping the blank ones.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}
