// Package textsource turns source documents into the cleaned line sequence
// the format engines consume.
package textsource

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(`[ \x{00A0}]{2,}`)
	reBoxNoise   = regexp.MustCompile(`^\s*[_\-=]{3,}\s*$`)
)

// SplitLines breaks raw text into lines, treating form feeds as breaks.
func SplitLines(s string) []string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	return strings.Split(s, "\n")
}

// NormalizeLines repairs encoding damage, collapses whitespace and drops
// blank and ruler lines. Order is preserved.
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = RepairMojibake(l)
		l = norm.NFC.String(l)
		l = reTabs.ReplaceAllString(l, " ")
		l = reMultiSpace.ReplaceAllString(l, " ")
		l = strings.TrimSpace(l)
		if l == "" || reBoxNoise.MatchString(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// RepairMojibake undoes UTF-8 text that was decoded as Windows-1252 once,
// e.g. "â€“" back to "–". Lines that do not round-trip are returned as is.
func RepairMojibake(s string) string {
	if !strings.ContainsAny(s, "ÃÂâÅ") {
		return s
	}
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) || raw == s {
		return s
	}
	return raw
}
