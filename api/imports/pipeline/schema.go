package pipeline

import "regexp"

// Import type names accepted by the upload endpoint.
const (
	TypeSalesReport = "sales_report"
	TypeTripSheet   = "trip_sheet"
	TypeStockOnHand = "stock_on_hand"
)

// PatternRule is the secondary header heuristic: when an exact alias lookup
// misses, a header whose squashed text contains every listed fragment maps
// to the canonical field.
type PatternRule struct {
	Contains  []string
	Canonical string
}

// Schema parameterizes the generic pipeline for one import type: alias
// table, required columns, marker texts and per-row requirements. The three
// layouts share one classifier rather than three copies of it.
type Schema struct {
	Type string

	// Header resolution
	Aliases        map[string]string // normalized header text -> canonical field
	PatternRules   []PatternRule
	HeaderKeywords []string // free-form header detection; >=2 hits make a header row
	FixedHeaderRow int      // 0-based; -1 means detect within the first 20 rows

	// Required canonical columns. Absence after mapping aborts the batch
	// with MissingColumnsError. Empty slice = no required-column policy.
	RequiredColumns []string

	// Section handling (sales reports). Empty markers disable sectioning.
	SectionMarker      string // e.g. "Customer Number:"
	SectionTotalMarker string // e.g. "Customer Total:"
	MarkerColumn       int    // designated marker cell within a row

	// Data-row requirements
	DateField    string         // canonical date field a data row must carry
	IDField      string         // canonical identifier field a data row must carry
	IDPattern    *regexp.Regexp // optional shape the identifier must match
	NumberFields []string       // canonical fields parsed as tolerant numerics
	TextFields   []string       // canonical fields copied as trimmed text

	// Continuation handling: rows that fail data parsing append to this
	// field of the previous record (comma-joined). Empty disables it.
	ContinuationField string

	// FooterMarkers stop the scan outright; LabelMarkers only disqualify a
	// row from being treated as a continuation line.
	FooterMarkers []string
	LabelMarkers  []string

	// RequireCustomerContext raises NO_CUSTOMER_CONTEXT when a data row is
	// emitted outside any customer section.
	RequireCustomerContext bool

	// CommitRequiredFields are numeric fields a record cannot be promoted
	// without. A record missing one lands in the terminal Error state and
	// is excluded from commit.
	CommitRequiredFields []string
}

var invoicePattern = regexp.MustCompile(`^[A-Za-z]{2,3}[0-9]+$`)

var salesReportSchema = &Schema{
	Type: TypeSalesReport,
	Aliases: map[string]string{
		"TRANSACTION NO":     "TxnNo",
		"TRANSACTION NUMBER": "TxnNo",
		"TXN NO":             "TxnNo",
		"INV NO":             "TxnNo",
		"INVOICE NO":         "TxnNo",
		"DOCUMENT NO":        "TxnNo",
		"DATE":               "TxnDate",
		"TXN DATE":           "TxnDate",
		"TRANSACTION DATE":   "TxnDate",
		"INVOICE DATE":       "TxnDate",
		"SALES":              "SalesAmount",
		"SALES AMOUNT":       "SalesAmount",
		"SALES VALUE":        "SalesAmount",
		"AMOUNT":             "SalesAmount",
		"RETURNS":            "ReturnAmount",
		"RETURN AMOUNT":      "ReturnAmount",
		"CREDITS":            "ReturnAmount",
		"REFERENCE":          "Reference",
		"REF":                "Reference",
		"CUSTOMER NAME":      "CustomerName",
	},
	PatternRules: []PatternRule{
		{Contains: []string{"customer", "name"}, Canonical: "CustomerName"},
		{Contains: []string{"return"}, Canonical: "ReturnAmount"},
		{Contains: []string{"sales"}, Canonical: "SalesAmount"},
	},
	HeaderKeywords:         []string{"TRANSACTION NO", "INV NO", "DATE", "SALES", "CUSTOMER NAME", "AMOUNT"},
	FixedHeaderRow:         -1,
	RequiredColumns:        []string{"TxnDate", "TxnNo", "SalesAmount"},
	SectionMarker:          "Customer Number:",
	SectionTotalMarker:     "Customer Total:",
	MarkerColumn:           0,
	DateField:              "TxnDate",
	IDField:                "TxnNo",
	NumberFields:           []string{"SalesAmount", "ReturnAmount"},
	TextFields:             []string{"Reference", "CustomerName"},
	FooterMarkers:          []string{"Report Total", "Grand Total", "Prepared by", "Approved by", "End of Report"},
	LabelMarkers:           []string{"Total", "Signature", "Page"},
	RequireCustomerContext: true,
	CommitRequiredFields:   []string{"SalesAmount"},
}

var tripSheetSchema = &Schema{
	Type: TypeTripSheet,
	Aliases: map[string]string{
		"INV NO":           "InvoiceNo",
		"INVOICE NO":       "InvoiceNo",
		"INVOICE NUMBER":   "InvoiceNo",
		"DOC NO":           "InvoiceNo",
		"DATE":             "TripDate",
		"TRIP DATE":        "TripDate",
		"DELIVERY DATE":    "TripDate",
		"CUSTOMER":         "CustomerName",
		"CUSTOMER NAME":    "CustomerName",
		"DELIVER TO":       "CustomerName",
		"ADDRESS":          "DeliveryAddress",
		"DELIVERY ADDRESS": "DeliveryAddress",
		"QTY":              "Quantity",
		"QUANTITY":         "Quantity",
		"CASES":            "Quantity",
		"AMOUNT":           "Amount",
		"VALUE":            "Amount",
		"INVOICE VALUE":    "Amount",
	},
	PatternRules: []PatternRule{
		{Contains: []string{"customer", "name"}, Canonical: "CustomerName"},
		{Contains: []string{"address"}, Canonical: "DeliveryAddress"},
		{Contains: []string{"qty"}, Canonical: "Quantity"},
	},
	HeaderKeywords:    []string{"INV NO", "INVOICE NO", "CUSTOMER NAME", "QTY", "ADDRESS", "DATE"},
	FixedHeaderRow:    -1,
	RequiredColumns:   []string{"InvoiceNo", "CustomerName"},
	DateField:         "TripDate",
	IDField:           "InvoiceNo",
	IDPattern:         invoicePattern,
	NumberFields:      []string{"Quantity", "Amount"},
	TextFields:        []string{"CustomerName", "DeliveryAddress"},
	ContinuationField: "DeliveryAddress",
	FooterMarkers:     []string{"Driver Signature", "Checked by", "Approved by", "Trip Total"},
	LabelMarkers:      []string{"Total", "Signature", "Date:", "Vehicle", "Page"},
}

var stockOnHandSchema = &Schema{
	Type: TypeStockOnHand,
	Aliases: map[string]string{
		"STOCK CODE":       "StockCode",
		"ITEM CODE":        "StockCode",
		"CODE":             "StockCode",
		"DESCRIPTION":      "Description",
		"ITEM DESCRIPTION": "Description",
		"QTY ON HAND":      "QtyOnHand",
		"QOH":              "QtyOnHand",
		"QUANTITY ON HAND": "QtyOnHand",
		"QTY ON PO":        "QtyOnPO",
		"ON ORDER":         "QtyOnPO",
		"QTY ON SO":        "QtyOnSO",
		"ON SO":            "QtyOnSO",
		"AVAILABLE":        "StockAvailable",
		"QTY AVAILABLE":    "StockAvailable",
		"UNIT COST":        "UnitCost",
		"COST":             "UnitCost",
		"TOTAL COST":       "TotalCost",
		"LOCATION":         "Location",
		"WAREHOUSE":        "Location",
	},
	PatternRules: []PatternRule{
		{Contains: []string{"stock", "code"}, Canonical: "StockCode"},
		{Contains: []string{"on", "hand"}, Canonical: "QtyOnHand"},
		{Contains: []string{"unit", "cost"}, Canonical: "UnitCost"},
	},
	HeaderKeywords:  []string{"STOCK CODE", "DESCRIPTION", "QTY ON HAND", "QOH", "UNIT COST"},
	FixedHeaderRow:  -1,
	RequiredColumns: []string{"StockCode", "Description", "QtyOnHand", "UnitCost"},
	IDField:         "StockCode",
	NumberFields:    []string{"QtyOnHand", "QtyOnPO", "QtyOnSO", "StockAvailable", "UnitCost", "TotalCost"},
	TextFields:      []string{"Description", "Location"},
	CommitRequiredFields: []string{
		"QtyOnHand", "UnitCost",
	},
	FooterMarkers:   []string{"Report Total", "Grand Total", "Printed on", "End of Report"},
	LabelMarkers:    []string{"Total", "Page"},
}

var schemas = map[string]*Schema{
	TypeSalesReport: salesReportSchema,
	TypeTripSheet:   tripSheetSchema,
	TypeStockOnHand: stockOnHandSchema,
}

// SchemaFor returns the schema for an import type, or nil when unknown.
func SchemaFor(importType string) *Schema {
	return schemas[importType]
}
