package constants

// Common error messages
const (
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrInvalidRequestBody = "Invalid request body"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrDB                 = "DB error"
	ErrBatchNotFound      = "Import batch not found or expired"
)

// Content types
const (
	ContentTypeHeader = "Content-Type"
	ContentTypeJSON   = "application/json"
	ContentTypeCSV    = "text/csv"
)

// Date formats
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// NBSP is the non-breaking space Excel inserts into hand-edited cells.
const NBSP = " "

// Issue severities
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue codes raised by the import pipeline. Field-specific validation
// issues use the INVALID_<FIELD> convention (see pipeline.InvalidFieldCode).
const (
	IssueNoCustomerContext      = "NO_CUSTOMER_CONTEXT"
	IssueStockAvailableMismatch = "STOCK_AVAILABLE_MISMATCH"
	IssueUnitCostMismatch       = "UNIT_COST_MISMATCH"
)

// UnknownCustomer is the sentinel substituted when a data row appears before
// any customer section header.
const UnknownCustomer = "UNKNOWN"
