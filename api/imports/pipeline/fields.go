package pipeline

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"TradeFlowERP/api/imports/sheet"
)

// cleanAmount strips currency symbols, thousands separators and whitespace
// so "R 1,234.56" and "(R 500.00)" both parse. Parenthesised values are
// accounting negatives.
func cleanAmount(s string) string {
	s = sheet.NormalizeCell(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',', r == ' ':
			// thousands separators
		case unicode.IsLetter(r), r == '$', r == '€', r == '£':
			// currency markers ("R", "ZAR", "$")
		}
	}
	out := b.String()
	if negative && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out
}

// ParseNumber is the tolerant numeric parse: "" and "NaN" are "no
// value" (nil, no error); anything else unparseable is an error for the
// caller to record as INVALID_<FIELD>.
func ParseNumber(raw string) (*float64, error) {
	v := sheet.NormalizeCell(raw)
	if v == "" || strings.EqualFold(v, "NaN") {
		return nil, nil
	}
	cleaned := cleanAmount(v)
	if cleaned == "" || cleaned == "-" {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	f, _ := d.Float64()
	return &f, nil
}

// ParseDateField is the tolerant date parse: empty is "no value", otherwise
// layout parsing with an Excel-serial fallback.
func ParseDateField(raw string) (*time.Time, error) {
	v := sheet.NormalizeCell(raw)
	if v == "" || strings.EqualFold(v, "NaN") {
		return nil, nil
	}
	t := sheet.ParseDateOrSerial(v)
	if t.IsZero() {
		return nil, fmt.Errorf("not a date: %q", raw)
	}
	return &t, nil
}

// InvalidFieldCode builds the machine-readable issue code for a canonical
// field: SalesAmount -> INVALID_SALES_AMOUNT.
func InvalidFieldCode(field string) string {
	runes := []rune(field)
	var b strings.Builder
	b.WriteString("INVALID_")
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// Word boundary, but keep acronym runs (QtyOnPO) together.
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
