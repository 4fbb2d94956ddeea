package match

import "strings"

// Normalize prepares a free-text name for comparison: uppercase, everything
// but letters and digits replaced by spaces, whitespace collapsed.
// Normalize(" ACME Corp. ") == Normalize("acme corp").
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// streetAbbrev maps common street-type words to the abbreviation drivers
// actually write on trip sheets.
var streetAbbrev = map[string]string{
	"STREET": "ST",
	"ROAD":   "RD",
	"AVENUE": "AVE",
	"DRIVE":  "DR",
}

// NormalizeAddress extends Normalize with street-type abbreviation so
// "14 Church Street" and "14 Church St" compare equal.
func NormalizeAddress(s string) string {
	words := strings.Fields(Normalize(s))
	for i, w := range words {
		if abbr, ok := streetAbbrev[w]; ok {
			words[i] = abbr
		}
	}
	return strings.Join(words, " ")
}
