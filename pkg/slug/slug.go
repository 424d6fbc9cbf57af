// Package slug generates URL-friendly identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// accentFolder maps common Latin diacritics to their ASCII equivalents so
// brand and category names slug consistently.
var accentFolder = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ğ", "g", "ñ", "n", "ş", "s", "ß", "ss",
)

// Make converts a display name to a slug: lowercase, accents folded,
// non-alphanumeric runs collapsed to single hyphens.
//
//	Make("Чай")            → ""
//	Make("Café Crème")     → "cafe-creme"
//	Make("  Hello  World") → "hello-world"
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = accentFolder.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
