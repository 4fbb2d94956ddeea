package pipeline

import (
	"fmt"
	"math"

	"TradeFlowERP/api/constants"
)

// consistencyTolerance absorbs rounding in hand-entered figures.
const consistencyTolerance = 0.01

// CheckConsistency cross-validates numeric fields that satisfy known
// arithmetic identities. Mismatches only annotate for human review; they
// never block commit, in strict mode or otherwise.
func CheckConsistency(rec *StagedRecord) []Issue {
	var issues []Issue

	// available = on hand + on order - on SO
	if rec.StockAvailable != nil && rec.QtyOnHand != nil && rec.QtyOnPO != nil && rec.QtyOnSO != nil {
		computed := *rec.QtyOnHand + *rec.QtyOnPO - *rec.QtyOnSO
		if math.Abs(computed-*rec.StockAvailable) > consistencyTolerance {
			rec.HasIssues = true
			issues = append(issues, Issue{
				RowIndex:   rec.RowIndex,
				Severity:   constants.SeverityWarning,
				Code:       constants.IssueStockAvailableMismatch,
				Message:    fmt.Sprintf("available %.2f does not equal on-hand + on-order - on-SO = %.2f", *rec.StockAvailable, computed),
				EntityCode: rec.StockCode,
				Location:   rec.Location,
			})
		}
	}

	// unit cost = total cost / qty on hand
	if rec.UnitCost != nil && rec.TotalCost != nil && rec.QtyOnHand != nil && *rec.QtyOnHand > 0 {
		computed := *rec.TotalCost / *rec.QtyOnHand
		if math.Abs(computed-*rec.UnitCost) > consistencyTolerance {
			rec.HasIssues = true
			issues = append(issues, Issue{
				RowIndex:   rec.RowIndex,
				Severity:   constants.SeverityWarning,
				Code:       constants.IssueUnitCostMismatch,
				Message:    fmt.Sprintf("unit cost %.2f does not equal total cost / qty on hand = %.2f", *rec.UnitCost, computed),
				EntityCode: rec.StockCode,
				Location:   rec.Location,
			})
		}
	}

	return issues
}
