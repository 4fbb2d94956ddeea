package pipeline

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus is the lifecycle state of an import batch. Valid transitions:
// Parsing -> Parsed|Failed, then Parsed -> Committed|Cancelled. Nothing else.
type BatchStatus string

const (
	StatusParsing   BatchStatus = "Parsing"
	StatusParsed    BatchStatus = "Parsed"
	StatusCommitted BatchStatus = "Committed"
	StatusCancelled BatchStatus = "Cancelled"
	StatusFailed    BatchStatus = "Failed"
)

// MatchStatus is the per-record reconciliation state.
type MatchStatus string

const (
	MatchUnvalidated MatchStatus = "Unvalidated"
	MatchMatched     MatchStatus = "Matched"
	MatchPartial     MatchStatus = "PartialMatch"
	MatchUnmatched   MatchStatus = "Unmatched"
	MatchError       MatchStatus = "Error"
)

// Issue is a non-fatal finding recorded against a batch row. Append-only.
type Issue struct {
	RowIndex   int    `json:"row_index"`
	Severity   string `json:"severity"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	EntityCode string `json:"entity_code,omitempty"`
	Location   string `json:"location,omitempty"`
}

// SuggestedMatch is a candidate reference-entity link. Always a hint; it
// becomes authoritative only when commit (or a human) accepts it.
type SuggestedMatch struct {
	CustomerID int64   `json:"customer_id"`
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
}

// StagedRecord is one parsed row, owned by its batch until commit. The field
// set is the union across import types; a schema only populates its own.
type StagedRecord struct {
	RowIndex int `json:"row_index"`

	CustomerNumber string `json:"customer_number,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`

	// Sales report
	TxnNo        string     `json:"txn_no,omitempty"`
	TxnDate      *time.Time `json:"txn_date,omitempty"`
	SalesAmount  *float64   `json:"sales_amount,omitempty"`
	ReturnAmount *float64   `json:"return_amount,omitempty"`
	Reference    string     `json:"reference,omitempty"`

	// Trip sheet
	InvoiceNo       string     `json:"invoice_no,omitempty"`
	TripDate        *time.Time `json:"trip_date,omitempty"`
	DeliveryAddress string     `json:"delivery_address,omitempty"`
	Quantity        *float64   `json:"quantity,omitempty"`
	Amount          *float64   `json:"amount,omitempty"`

	// Stock on hand
	StockCode      string   `json:"stock_code,omitempty"`
	Description    string   `json:"description,omitempty"`
	QtyOnHand      *float64 `json:"qty_on_hand,omitempty"`
	QtyOnPO        *float64 `json:"qty_on_po,omitempty"`
	QtyOnSO        *float64 `json:"qty_on_so,omitempty"`
	StockAvailable *float64 `json:"stock_available,omitempty"`
	UnitCost       *float64 `json:"unit_cost,omitempty"`
	TotalCost      *float64 `json:"total_cost,omitempty"`
	Location       string   `json:"location,omitempty"`

	HasIssues bool `json:"has_issues"`

	MatchStatus       MatchStatus      `json:"match_status"`
	MatchedCustomerID *int64           `json:"matched_customer_id,omitempty"`
	MatchedInvoiceID  *int64           `json:"matched_invoice_id,omitempty"`
	MatchConfidence   float64          `json:"match_confidence,omitempty"`
	Alternatives      []SuggestedMatch `json:"alternatives,omitempty"`
}

// Eligible reports whether the record may be promoted at commit time.
// Error rows are excluded and reported instead.
func (r *StagedRecord) Eligible() bool {
	switch r.MatchStatus {
	case MatchMatched, MatchPartial, MatchUnmatched:
		return true
	}
	return false
}

// Summary is the aggregate view returned with a batch's status.
type Summary struct {
	RowsScanned       int             `json:"rows_scanned"`
	RecordsStaged     int             `json:"records_staged"`
	RecordsWithIssues int             `json:"records_with_issues"`
	WarningCount      int             `json:"warning_count"`
	ErrorCount        int             `json:"error_count"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalReturns      decimal.Decimal `json:"total_returns"`
	DateFrom          *time.Time      `json:"date_from,omitempty"`
	DateTo            *time.Time      `json:"date_to,omitempty"`
	Matched           int             `json:"matched"`
	PartialMatched    int             `json:"partial_matched"`
	Unmatched         int             `json:"unmatched"`
}

// Batch is one upload's parsing session, from raw file to commit/cancel.
// Mutated only by the owning pipeline run and the commit/cancel handlers.
type Batch struct {
	ID         string       `json:"batch_id"`
	FileName   string       `json:"file_name"`
	ImportType string       `json:"import_type"`
	Company    string       `json:"company"`
	Strict     bool         `json:"strict"`
	Status     BatchStatus  `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	ParsedAt   *time.Time   `json:"parsed_at,omitempty"`
	AsOfDate   *time.Time   `json:"as_of_date,omitempty"`
	CreatedBy  string       `json:"created_by,omitempty"`
	Summary    Summary      `json:"summary"`
	Records    []StagedRecord `json:"-"`
	Issues     []Issue        `json:"-"`
}
