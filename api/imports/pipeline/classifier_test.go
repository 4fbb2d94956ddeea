package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/api/imports/sheet"
)

func salesGrid() sheet.Grid {
	return sheet.Grid{
		{"Monthly Sales Report - March 2024"},
		{"Transaction No", "Date", "Sales Amount", "Returns", "Reference"},
		{"Customer Number: 100 / Acme Traders"},
		{"T001", "15/03/2024", "1,234.56", "", "INV-22"},
		{"T002", "16/03/2024", "R 500.00", "50.00", ""},
		{"Customer Total:", "1734.56"},
		{"Customer Number:", "200", "Bravo Foods"},
		{"T003", "17/03/2024", "300.00", "", ""},
		{"Report Total", "2034.56"},
		{"T999", "18/03/2024", "999.00", "", ""}, // after footer, must never parse
	}
}

func classifySales(t *testing.T, grid sheet.Grid, strict bool) ([]StagedRecord, []Issue, error) {
	t.Helper()
	headerRow := DetectHeaderRow(grid, salesReportSchema)
	cm := MapColumns(grid[headerRow], salesReportSchema)
	require.NoError(t, RequireColumns(cm, salesReportSchema))
	return Classify(grid, salesReportSchema, cm, headerRow, strict)
}

func TestClassifySalesReportSections(t *testing.T) {
	records, issues, err := classifySales(t, salesGrid(), false)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, records, 3)

	assert.Equal(t, "100", records[0].CustomerNumber)
	assert.Equal(t, "Acme Traders", records[0].CustomerName)
	assert.Equal(t, "T001", records[0].TxnNo)
	require.NotNil(t, records[0].SalesAmount)
	assert.InDelta(t, 1234.56, *records[0].SalesAmount, 1e-9)
	assert.Nil(t, records[0].ReturnAmount)
	assert.Equal(t, "INV-22", records[0].Reference)
	assert.Equal(t, 4, records[0].RowIndex)

	assert.Equal(t, "100", records[1].CustomerNumber)
	require.NotNil(t, records[1].SalesAmount)
	assert.InDelta(t, 500, *records[1].SalesAmount, 1e-9)
	require.NotNil(t, records[1].ReturnAmount)
	assert.InDelta(t, 50, *records[1].ReturnAmount, 1e-9)

	// Section total cleared the context; the next section header set a new one.
	assert.Equal(t, "200", records[2].CustomerNumber)
	assert.Equal(t, "Bravo Foods", records[2].CustomerName)
	assert.Equal(t, "T003", records[2].TxnNo)

	for _, rec := range records {
		assert.Equal(t, MatchUnvalidated, rec.MatchStatus)
	}
}

func TestClassifyStopsAtFooter(t *testing.T) {
	records, _, err := classifySales(t, salesGrid(), false)
	require.NoError(t, err)
	for _, rec := range records {
		assert.NotEqual(t, "T999", rec.TxnNo)
	}
}

func TestClassifyRowBeforeAnySection(t *testing.T) {
	grid := sheet.Grid{
		{"Transaction No", "Date", "Sales Amount"},
		{"T001", "15/03/2024", "100.00"},
		{"Customer Number: 100 / Acme Traders"},
		{"T002", "16/03/2024", "200.00"},
	}
	records, issues, err := Classify(grid, salesReportSchema, MapColumns(grid[0], salesReportSchema), 0, false)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, constants.UnknownCustomer, records[0].CustomerNumber)
	assert.True(t, records[0].HasIssues)
	require.Len(t, issues, 1)
	assert.Equal(t, constants.IssueNoCustomerContext, issues[0].Code)
	assert.Equal(t, constants.SeverityWarning, issues[0].Severity)

	assert.Equal(t, "100", records[1].CustomerNumber)
}

func TestClassifyStrictAbortsOnFirstIssue(t *testing.T) {
	grid := sheet.Grid{
		{"Transaction No", "Date", "Sales Amount"},
		{"Customer Number: 100 / Acme Traders"},
		{"T001", "15/03/2024", "garbage"},
		{"T002", "16/03/2024", "200.00"},
	}
	records, issues, err := Classify(grid, salesReportSchema, MapColumns(grid[0], salesReportSchema), 0, true)
	require.Error(t, err)
	var abort *StrictAbortError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, "INVALID_SALES_AMOUNT", abort.Issue.Code)
	// Strict mode upgrades the recorded issue to an error before aborting.
	require.Len(t, issues, 1)
	assert.Equal(t, constants.SeverityError, issues[0].Severity)
	assert.Empty(t, records)
}

func TestClassifyTripSheetContinuationLines(t *testing.T) {
	grid := sheet.Grid{
		{"Inv No", "Customer Name", "Address", "Qty", "Amount", "Date"},
		{"ABC123", "Acme Traders", "14 Church Street", "10", "5,000.00", "05/01/2024"},
		{"", "", "Unit 4 Industrial Park"},
		{"XY99", "Bravo Foods", "1 Main Road", "4", "1200", "05/01/2024"},
		{"Total", "", "", "14", "6200"},
		{"Driver Signature: ______________"},
	}
	headerRow := DetectHeaderRow(grid, tripSheetSchema)
	require.Equal(t, 0, headerRow)
	cm := MapColumns(grid[headerRow], tripSheetSchema)
	require.NoError(t, RequireColumns(cm, tripSheetSchema))

	records, issues, err := Classify(grid, tripSheetSchema, cm, headerRow, false)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, records, 2)

	assert.Equal(t, "ABC123", records[0].InvoiceNo)
	assert.Equal(t, "14 Church Street, Unit 4 Industrial Park", records[0].DeliveryAddress)
	require.NotNil(t, records[0].Quantity)
	assert.InDelta(t, 10, *records[0].Quantity, 1e-9)

	// The "Total" row carries a label marker, so it must not be appended to
	// the Bravo Foods address.
	assert.Equal(t, "XY99", records[1].InvoiceNo)
	assert.Equal(t, "1 Main Road", records[1].DeliveryAddress)
}

func TestClassifyTripSheetStrayTextIsNotContinuation(t *testing.T) {
	grid := sheet.Grid{
		{"Inv No", "Customer Name", "Address", "Qty", "Amount", "Date"},
		{"ABC123", "Acme Traders", "14 Church Street", "10", "5,000.00", "05/01/2024"},
		{"", "", "Unit 4 Industrial Park"},
		// Free text outside the address column: a driver note and a page
		// marker. Neither may be comma-joined onto the address.
		{"", "Delivered after hours", ""},
		{"Page 2 of 3"},
	}
	cm := MapColumns(grid[0], tripSheetSchema)
	require.NoError(t, RequireColumns(cm, tripSheetSchema))

	records, issues, err := Classify(grid, tripSheetSchema, cm, 0, false)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, records, 1)
	assert.Equal(t, "14 Church Street, Unit 4 Industrial Park", records[0].DeliveryAddress)
}

func TestClassifyTripSheetRejectsMalformedInvoiceNo(t *testing.T) {
	grid := sheet.Grid{
		{"Inv No", "Customer Name", "Address", "Qty", "Amount", "Date"},
		{"1234", "Acme Traders", "14 Church St", "10", "100", "05/01/2024"},
		{"ABCD1234", "Acme Traders", "14 Church St", "10", "100", "05/01/2024"},
		{"AB12", "Acme Traders", "14 Church St", "10", "100", "05/01/2024"},
	}
	cm := MapColumns(grid[0], tripSheetSchema)
	records, _, err := Classify(grid, tripSheetSchema, cm, 0, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AB12", records[0].InvoiceNo)
}

func TestParseSectionHeaderVariants(t *testing.T) {
	grid := sheet.Grid{
		{"Customer Number: 100 / Acme Traders"},
		{"Customer Number:", "200", "Bravo", "Foods"},
		{"Customer Number: 300"},
	}
	num, name := parseSectionHeader(grid, 0, 0, "Customer Number:")
	assert.Equal(t, "100", num)
	assert.Equal(t, "Acme Traders", name)

	num, name = parseSectionHeader(grid, 1, 0, "Customer Number:")
	assert.Equal(t, "200", num)
	assert.Equal(t, "Bravo Foods", name)

	num, name = parseSectionHeader(grid, 2, 0, "Customer Number:")
	assert.Equal(t, "300", num)
	assert.Equal(t, "", name)
}
