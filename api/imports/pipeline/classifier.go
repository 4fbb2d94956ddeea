package pipeline

import (
	"fmt"
	"strings"
	"time"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/api/imports/sheet"
)

// StrictAbortError aborts a strict-mode batch on the first condition that
// normal mode would only annotate. The offending issue rides along so the
// failed batch still reports it.
type StrictAbortError struct {
	Issue Issue
}

func (e *StrictAbortError) Error() string {
	return fmt.Sprintf("strict mode abort at row %d: %s: %s", e.Issue.RowIndex, e.Issue.Code, e.Issue.Message)
}

// scanState is the accumulator threaded through the row fold: the customer
// section we are inside of, and the last emitted record for continuation
// lines. Classification is a pure function of (rows, initial state).
type scanState struct {
	customerNumber string
	customerName   string
	haveCustomer   bool
	lastIdx        int // index into the emitted records, -1 when none is open
}

// Classify walks the grid top to bottom below the header row and extracts
// canonical records. Row order is significant; this must never be run over
// a reordered or partitioned grid.
func Classify(grid sheet.Grid, sc *Schema, cm ColumnMap, headerRow int, strict bool) ([]StagedRecord, []Issue, error) {
	var (
		records []StagedRecord
		issues  []Issue
	)
	state := scanState{lastIdx: -1}

	addIssue := func(is Issue) error {
		if strict {
			is.Severity = constants.SeverityError
			issues = append(issues, is)
			return &StrictAbortError{Issue: is}
		}
		issues = append(issues, is)
		return nil
	}

	for i := headerRow + 1; i < len(grid); i++ {
		if grid.RowEmpty(i) {
			continue
		}
		rowText := joinRowText(grid[i])

		// Footer section: signatures, approver lines, report totals. Rows
		// past this point are never parsed, even if the sheet continues.
		if containsAnyFold(rowText, sc.FooterMarkers) {
			break
		}

		marker := grid.Cell(i, sc.MarkerColumn)
		if sc.SectionMarker != "" && strings.HasPrefix(marker, sc.SectionMarker) {
			num, name := parseSectionHeader(grid, i, sc.MarkerColumn, sc.SectionMarker)
			state.customerNumber = num
			state.customerName = name
			state.haveCustomer = num != "" || name != ""
			state.lastIdx = -1
			continue
		}
		if sc.SectionTotalMarker != "" && strings.HasPrefix(marker, sc.SectionTotalMarker) {
			state.customerNumber = ""
			state.customerName = ""
			state.haveCustomer = false
			state.lastIdx = -1
			continue
		}

		rec, ok, err := parseDataRow(grid, i, sc, cm, addIssue)
		if err != nil {
			return records, issues, err
		}
		if !ok {
			// Not a data row. Overflow from a wrapped cell continues the
			// previous record; text in any other column is page noise.
			if contCol, has := cm[sc.ContinuationField]; has && state.lastIdx >= 0 &&
				rowIsContinuation(grid[i], contCol) && !containsAnyFold(rowText, sc.LabelMarkers) {
				appendContinuation(&records[state.lastIdx], sc.ContinuationField, grid.Cell(i, contCol))
			}
			continue
		}

		if sc.RequireCustomerContext {
			if state.haveCustomer {
				rec.CustomerNumber = state.customerNumber
				rec.CustomerName = state.customerName
			} else {
				rec.CustomerNumber = constants.UnknownCustomer
				rec.HasIssues = true
				if err := addIssue(Issue{
					RowIndex:   rec.RowIndex,
					Severity:   constants.SeverityWarning,
					Code:       constants.IssueNoCustomerContext,
					Message:    "data row before any customer section header; customer set to " + constants.UnknownCustomer,
					EntityCode: recordEntityCode(rec),
				}); err != nil {
					return records, issues, err
				}
			}
		}

		records = append(records, *rec)
		state.lastIdx = len(records) - 1
	}

	return records, issues, nil
}

// parseDataRow attempts to read row i as a data row: a non-empty identifier
// (optionally shape-checked) and, when the schema declares one, a parseable
// date. Failing either means "not a data row", not an issue.
func parseDataRow(grid sheet.Grid, i int, sc *Schema, cm ColumnMap, addIssue func(Issue) error) (*StagedRecord, bool, error) {
	idCol, ok := cm[sc.IDField]
	if !ok {
		return nil, false, nil
	}
	idVal := grid.Cell(i, idCol)
	if idVal == "" {
		return nil, false, nil
	}
	if sc.IDPattern != nil && !sc.IDPattern.MatchString(idVal) {
		return nil, false, nil
	}

	var rowDate *time.Time
	if sc.DateField != "" {
		dateCol, ok := cm[sc.DateField]
		if !ok {
			return nil, false, nil
		}
		d, err := ParseDateField(grid.Cell(i, dateCol))
		if err != nil || d == nil {
			return nil, false, nil
		}
		rowDate = d
	}

	rec := &StagedRecord{
		RowIndex:    i + 1, // 1-based, as the author sees the sheet
		MatchStatus: MatchUnvalidated,
	}
	rec.setText(sc.IDField, idVal)
	if rowDate != nil {
		rec.setDate(sc.DateField, rowDate)
	}

	for _, name := range sc.TextFields {
		col, ok := cm[name]
		if !ok {
			continue
		}
		if v := grid.Cell(i, col); v != "" {
			rec.setText(name, v)
		}
	}

	for _, name := range sc.NumberFields {
		col, ok := cm[name]
		if !ok {
			continue
		}
		raw := grid.Cell(i, col)
		v, err := ParseNumber(raw)
		if err != nil {
			rec.HasIssues = true
			if issueErr := addIssue(Issue{
				RowIndex:   rec.RowIndex,
				Severity:   constants.SeverityWarning,
				Code:       InvalidFieldCode(name),
				Message:    fmt.Sprintf("%s value %q is not numeric", name, raw),
				EntityCode: recordEntityCode(rec),
				Location:   rec.Location,
			}); issueErr != nil {
				return nil, false, issueErr
			}
			continue
		}
		rec.setNumber(name, v)
	}

	return rec, true, nil
}

// parseSectionHeader pulls the customer number and name out of a section
// marker row. The number may share the marker cell ("Customer Number: 100")
// or sit in the adjacent cells, with the name following it.
func parseSectionHeader(grid sheet.Grid, row, markerCol int, marker string) (num, name string) {
	rest := strings.TrimSpace(strings.TrimPrefix(grid.Cell(row, markerCol), marker))
	cells := []string{}
	for c := markerCol + 1; c < markerCol+4; c++ {
		if v := grid.Cell(row, c); v != "" {
			cells = append(cells, v)
		}
	}
	if rest != "" {
		// Marker cell may carry "100 / Acme" or just the number.
		parts := strings.SplitN(rest, "/", 2)
		num = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}
	}
	if num == "" && len(cells) > 0 {
		num = cells[0]
		cells = cells[1:]
	}
	if name == "" && len(cells) > 0 {
		name = strings.Join(cells, " ")
	}
	return num, name
}

// rowIsContinuation reports whether row i's text is confined to the
// continuation field's column. A wrapped cell overflows into the rows below
// within its own column; free text anywhere else is not a continuation.
func rowIsContinuation(row []string, contCol int) bool {
	for c, cell := range row {
		if c != contCol && sheet.NormalizeCell(cell) != "" {
			return false
		}
	}
	return true
}

func appendContinuation(rec *StagedRecord, field, text string) {
	if text == "" {
		return
	}
	cur := rec.getText(field)
	if cur == "" {
		rec.setText(field, text)
		return
	}
	rec.setText(field, cur+", "+text)
}

func joinRowText(row []string) string {
	var parts []string
	for _, c := range row {
		if v := sheet.NormalizeCell(c); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func containsAnyFold(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func recordEntityCode(rec *StagedRecord) string {
	switch {
	case rec.TxnNo != "":
		return rec.TxnNo
	case rec.InvoiceNo != "":
		return rec.InvoiceNo
	case rec.StockCode != "":
		return rec.StockCode
	}
	return ""
}

// Canonical-field accessors used by the generic classifier. The switch is
// the price of one shared state machine across three field sets.

func (r *StagedRecord) setText(name, v string) {
	switch name {
	case "TxnNo":
		r.TxnNo = v
	case "InvoiceNo":
		r.InvoiceNo = v
	case "StockCode":
		r.StockCode = v
	case "CustomerName":
		r.CustomerName = v
	case "DeliveryAddress":
		r.DeliveryAddress = v
	case "Reference":
		r.Reference = v
	case "Description":
		r.Description = v
	case "Location":
		r.Location = v
	}
}

func (r *StagedRecord) getText(name string) string {
	switch name {
	case "TxnNo":
		return r.TxnNo
	case "InvoiceNo":
		return r.InvoiceNo
	case "StockCode":
		return r.StockCode
	case "CustomerName":
		return r.CustomerName
	case "DeliveryAddress":
		return r.DeliveryAddress
	case "Reference":
		return r.Reference
	case "Description":
		return r.Description
	case "Location":
		return r.Location
	}
	return ""
}

func (r *StagedRecord) setDate(name string, v *time.Time) {
	switch name {
	case "TxnDate":
		r.TxnDate = v
	case "TripDate":
		r.TripDate = v
	}
}

func (r *StagedRecord) getNumber(name string) *float64 {
	switch name {
	case "SalesAmount":
		return r.SalesAmount
	case "ReturnAmount":
		return r.ReturnAmount
	case "Quantity":
		return r.Quantity
	case "Amount":
		return r.Amount
	case "QtyOnHand":
		return r.QtyOnHand
	case "QtyOnPO":
		return r.QtyOnPO
	case "QtyOnSO":
		return r.QtyOnSO
	case "StockAvailable":
		return r.StockAvailable
	case "UnitCost":
		return r.UnitCost
	case "TotalCost":
		return r.TotalCost
	}
	return nil
}

func (r *StagedRecord) setNumber(name string, v *float64) {
	switch name {
	case "SalesAmount":
		r.SalesAmount = v
	case "ReturnAmount":
		r.ReturnAmount = v
	case "Quantity":
		r.Quantity = v
	case "Amount":
		r.Amount = v
	case "QtyOnHand":
		r.QtyOnHand = v
	case "QtyOnPO":
		r.QtyOnPO = v
	case "QtyOnSO":
		r.QtyOnSO = v
	case "StockAvailable":
		r.StockAvailable = v
	case "UnitCost":
		r.UnitCost = v
	case "TotalCost":
		r.TotalCost = v
	}
}
