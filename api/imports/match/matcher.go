package match

import (
	"sort"
	"strings"

	"TradeFlowERP/api/imports/pipeline"
)

// Confidence tiers and weights of the entity matcher. Lower bounds are
// inclusive: a combined score of exactly 0.92 auto-matches.
const (
	confidenceExactID   = 1.0
	confidenceExactName = 0.95
	tierAutoMatch       = 0.92
	tierPartialMatch    = 0.80
	tierFloor           = 0.60
	nameWeight          = 0.7
	addressWeight       = 0.3
	maxAlternatives     = 3
)

// Customer is a read-only reference entity. Matching never mutates it; a
// match only proposes the link applied at commit time.
type Customer struct {
	ID       int64
	Code     string
	Name     string
	Address  string
	City     string
	Province string

	normName string
	normAddr string
}

// Invoice is a read-only reference entity (non-cancelled invoices only).
type Invoice struct {
	ID         int64
	Number     string
	CustomerID int64
	Amount     float64
}

// Matcher holds the in-memory reference sets for one pipeline run.
type Matcher struct {
	customers []Customer
	byCode    map[string]int
	invoices  map[string]Invoice
}

// NewMatcher indexes the reference sets. Normalized forms are precomputed
// once; the matcher is then read-only and safe to share.
func NewMatcher(customers []Customer, invoices []Invoice) *Matcher {
	m := &Matcher{
		customers: make([]Customer, len(customers)),
		byCode:    make(map[string]int, len(customers)),
		invoices:  make(map[string]Invoice, len(invoices)),
	}
	for i, c := range customers {
		c.normName = Normalize(c.Name)
		c.normAddr = NormalizeAddress(c.Address)
		m.customers[i] = c
		if code := strings.ToUpper(strings.TrimSpace(c.Code)); code != "" {
			if _, dup := m.byCode[code]; !dup {
				m.byCode[code] = i
			}
		}
	}
	for _, inv := range invoices {
		if num := strings.ToUpper(strings.TrimSpace(inv.Number)); num != "" {
			m.invoices[num] = inv
		}
	}
	return m
}

// MatchRecord assigns the record its best-guess reference link with a
// confidence and, below the auto tier, ranked alternatives. First success
// wins; later steps never run. Records already in a terminal state are
// left alone.
func (m *Matcher) MatchRecord(rec *pipeline.StagedRecord) {
	if rec.MatchStatus != pipeline.MatchUnvalidated {
		return
	}

	// 1. Exact identifier: invoice number, then customer code.
	if num := strings.ToUpper(firstNonEmpty(rec.InvoiceNo, rec.TxnNo)); num != "" {
		if inv, ok := m.invoices[num]; ok {
			rec.MatchStatus = pipeline.MatchMatched
			rec.MatchConfidence = confidenceExactID
			invID, custID := inv.ID, inv.CustomerID
			rec.MatchedInvoiceID = &invID
			rec.MatchedCustomerID = &custID
			return
		}
	}
	if code := strings.ToUpper(strings.TrimSpace(rec.CustomerNumber)); code != "" {
		if i, ok := m.byCode[code]; ok {
			rec.MatchStatus = pipeline.MatchMatched
			rec.MatchConfidence = confidenceExactID
			custID := m.customers[i].ID
			rec.MatchedCustomerID = &custID
			return
		}
	}

	// 2. Exact normalized-name match.
	normName := Normalize(rec.CustomerName)
	if normName != "" {
		for i := range m.customers {
			if m.customers[i].normName == normName {
				rec.MatchStatus = pipeline.MatchMatched
				rec.MatchConfidence = confidenceExactName
				custID := m.customers[i].ID
				rec.MatchedCustomerID = &custID
				return
			}
		}
	}
	if normName == "" {
		rec.MatchStatus = pipeline.MatchUnmatched
		return
	}

	// 3. Weighted fuzzy match over the whole reference set.
	normAddr := NormalizeAddress(rec.DeliveryAddress)
	var candidates []candidate
	for i := range m.customers {
		c := &m.customers[i]
		score := JaroWinkler(normName, c.normName)
		if normAddr != "" && c.normAddr != "" {
			score = nameWeight*score + addressWeight*JaroWinkler(normAddr, c.normAddr)
		}
		if score >= tierFloor {
			candidates = append(candidates, candidate{idx: i, score: score})
		}
	}
	if len(candidates) == 0 {
		rec.MatchStatus = pipeline.MatchUnmatched
		return
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	best := candidates[0]
	rec.MatchConfidence = best.score
	switch {
	case best.score >= tierAutoMatch:
		rec.MatchStatus = pipeline.MatchMatched
		custID := m.customers[best.idx].ID
		rec.MatchedCustomerID = &custID
	case best.score >= tierPartialMatch:
		rec.MatchStatus = pipeline.MatchPartial
		custID := m.customers[best.idx].ID
		rec.MatchedCustomerID = &custID
		rec.Alternatives = m.alternatives(candidates)
	default:
		rec.MatchStatus = pipeline.MatchUnmatched
		rec.Alternatives = m.alternatives(candidates)
	}
}

// MatchAll runs the matcher over a batch's staged records in place.
func (m *Matcher) MatchAll(records []pipeline.StagedRecord) {
	for i := range records {
		m.MatchRecord(&records[i])
	}
}

type candidate struct {
	idx   int
	score float64
}

func (m *Matcher) alternatives(ranked []candidate) []pipeline.SuggestedMatch {
	n := len(ranked)
	if n > maxAlternatives {
		n = maxAlternatives
	}
	var out []pipeline.SuggestedMatch
	for _, c := range ranked[:n] {
		cust := &m.customers[c.idx]
		out = append(out, pipeline.SuggestedMatch{
			CustomerID: cust.ID,
			Label:      cust.Name,
			Score:      c.score,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
