package main

import (
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// quoteReplacer folds curly quotes to their ASCII forms
var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"„", `"`, // low double
	"‟", `"`, // reversed high double
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
)

// Charmaps tried, in order, when undoing a UTF-8 page that was decoded as a single-byte charset
var mojibakeCharmaps = []*charmap.Charmap{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// normalizeText decodes entities, repairs mis-decoded text and folds smart quotes.
func normalizeText(text string) string {
	text = html.UnescapeString(text)
	repaired := repairMojibake(text)
	if repaired == text {
		// a decoded curly quote re-encodes to a stray byte and blocks the repair
		repaired = repairMojibake(quoteReplacer.Replace(text))
	}
	return quoteReplacer.Replace(repaired)
}

// repairMojibake re-encodes text to the bytes it most likely came from and
// reads them back as UTF-8. The input is returned unchanged unless the
// round trip yields different, valid UTF-8.
func repairMojibake(text string) string {
	if isASCII(text) {
		return text
	}
	for _, cm := range mojibakeCharmaps {
		raw, err := cm.NewEncoder().String(text)
		if err != nil {
			continue
		}
		if raw != text && utf8.ValidString(raw) {
			debugLog("repaired mis-decoded text using %s", cm)
			return raw
		}
	}
	return text
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
