package pipeline

import (
	"fmt"
	"strings"

	"TradeFlowERP/api/imports/sheet"
)

// ColumnMap maps canonical field names to column indexes in the header row.
type ColumnMap map[string]int

// MissingColumnsError reports required canonical fields absent after header
// mapping. Raised before any row processing begins.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Missing, ", "))
}

// headerKey normalizes header text for alias lookup: trimmed, uppercased,
// collapsed whitespace.
func headerKey(s string) string {
	return strings.ToUpper(sheet.NormalizeCell(s))
}

// squash strips everything but letters and digits, lowercased. Used by the
// secondary pattern heuristic so "Customer  Name:" still hits.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapColumns resolves a header row to canonical field indexes. Exact alias
// lookup wins; otherwise each pattern rule is tried against the squashed
// header text. First match wins and later duplicate headers for an already
// mapped canonical name are ignored. Unmapped headers are dropped silently.
func MapColumns(header []string, sc *Schema) ColumnMap {
	cm := make(ColumnMap)
	for idx, cell := range header {
		key := headerKey(cell)
		if key == "" {
			continue
		}
		canonical, ok := sc.Aliases[key]
		if !ok {
			canonical = applyPatternRules(cell, sc.PatternRules)
		}
		if canonical == "" {
			continue
		}
		if _, taken := cm[canonical]; taken {
			continue
		}
		cm[canonical] = idx
	}
	return cm
}

func applyPatternRules(header string, rules []PatternRule) string {
	sq := squash(header)
	if sq == "" {
		return ""
	}
	for _, rule := range rules {
		hit := true
		for _, frag := range rule.Contains {
			if !strings.Contains(sq, squash(frag)) {
				hit = false
				break
			}
		}
		if hit {
			return rule.Canonical
		}
	}
	return ""
}

// RequireColumns enforces the schema's required-field policy against a
// resolved map. Mandatory for stock snapshots, advisory layouts skip it by
// declaring no required columns.
func RequireColumns(cm ColumnMap, sc *Schema) error {
	var missing []string
	for _, name := range sc.RequiredColumns {
		if _, ok := cm[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Missing: missing}
	}
	return nil
}

// headerScanDepth bounds free-form header detection.
const headerScanDepth = 20

// DetectHeaderRow scans the top of a free-form sheet for the header row: the
// first row where at least two cells match known header keywords. Falls back
// to row 0 when nothing qualifies.
func DetectHeaderRow(grid sheet.Grid, sc *Schema) int {
	if sc.FixedHeaderRow >= 0 {
		return sc.FixedHeaderRow
	}
	for i := 0; i < headerScanDepth && i < len(grid); i++ {
		hits := 0
		for _, cell := range grid[i] {
			key := headerKey(cell)
			if key == "" {
				continue
			}
			for _, kw := range sc.HeaderKeywords {
				if key == kw {
					hits++
					break
				}
			}
		}
		if hits >= 2 {
			return i
		}
	}
	return 0
}
