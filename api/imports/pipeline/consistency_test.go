package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeFlowERP/api/constants"
)

func fptr(v float64) *float64 { return &v }

func TestCheckConsistencyStockAvailable(t *testing.T) {
	rec := &StagedRecord{
		StockCode:      "WIDGET-01",
		QtyOnHand:      fptr(100),
		QtyOnPO:        fptr(20),
		QtyOnSO:        fptr(30),
		StockAvailable: fptr(90),
	}
	assert.Empty(t, CheckConsistency(rec))
	assert.False(t, rec.HasIssues)

	// Within tolerance.
	rec.StockAvailable = fptr(90.005)
	assert.Empty(t, CheckConsistency(rec))

	// Outside tolerance.
	rec.StockAvailable = fptr(90.02)
	issues := CheckConsistency(rec)
	require.Len(t, issues, 1)
	assert.Equal(t, constants.IssueStockAvailableMismatch, issues[0].Code)
	assert.Equal(t, constants.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "WIDGET-01", issues[0].EntityCode)
	assert.True(t, rec.HasIssues)
}

func TestCheckConsistencyUnitCost(t *testing.T) {
	rec := &StagedRecord{
		StockCode: "WIDGET-02",
		QtyOnHand: fptr(100),
		UnitCost:  fptr(10),
		TotalCost: fptr(1000),
	}
	assert.Empty(t, CheckConsistency(rec))

	rec.UnitCost = fptr(10.02)
	issues := CheckConsistency(rec)
	require.Len(t, issues, 1)
	assert.Equal(t, constants.IssueUnitCostMismatch, issues[0].Code)
}

func TestCheckConsistencySkipsMissingInputs(t *testing.T) {
	// With any operand absent, the identity cannot be evaluated.
	rec := &StagedRecord{
		QtyOnHand:      fptr(100),
		StockAvailable: fptr(50),
	}
	assert.Empty(t, CheckConsistency(rec))

	// Zero on-hand quantity never divides.
	rec = &StagedRecord{
		QtyOnHand: fptr(0),
		UnitCost:  fptr(10),
		TotalCost: fptr(1000),
	}
	assert.Empty(t, CheckConsistency(rec))
}
