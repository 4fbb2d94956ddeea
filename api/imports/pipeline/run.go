package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/api/imports/sheet"
)

// Run drives one synchronous pass over a parsed grid: header resolution,
// required-column policy, classification, per-record consistency checks and
// summary aggregation. Entity matching is layered on by the caller once
// reference data is in hand.
func Run(grid sheet.Grid, sc *Schema, strict bool) ([]StagedRecord, []Issue, Summary, error) {
	headerRow := DetectHeaderRow(grid, sc)
	cm := MapColumns(grid[headerRow], sc)
	if err := RequireColumns(cm, sc); err != nil {
		return nil, nil, Summary{}, err
	}

	records, issues, err := Classify(grid, sc, cm, headerRow, strict)
	if err != nil {
		return records, issues, BuildSummary(len(grid)-headerRow-1, records, issues), err
	}

	for i := range records {
		issues = append(issues, CheckConsistency(&records[i])...)
		hard := markHardFailures(&records[i], sc)
		issues = append(issues, hard...)
		if strict && len(hard) > 0 {
			return records, issues, BuildSummary(len(grid)-headerRow-1, records, issues), &StrictAbortError{Issue: hard[0]}
		}
	}

	return records, issues, BuildSummary(len(grid)-headerRow-1, records, issues), nil
}

// markHardFailures moves records missing a commit-required numeric value
// into the terminal Error state. Error rows are excluded from commit and
// reported; everything else stays eligible.
func markHardFailures(rec *StagedRecord, sc *Schema) []Issue {
	var issues []Issue
	for _, name := range sc.CommitRequiredFields {
		if rec.getNumber(name) != nil {
			continue
		}
		rec.MatchStatus = MatchError
		rec.HasIssues = true
		issues = append(issues, Issue{
			RowIndex:   rec.RowIndex,
			Severity:   constants.SeverityError,
			Code:       InvalidFieldCode(name),
			Message:    name + " has no usable value; row excluded from commit",
			EntityCode: recordEntityCode(rec),
			Location:   rec.Location,
		})
	}
	return issues
}

// BuildSummary aggregates counts, money totals and the covered date range.
// Money runs through decimal so a thousand 0.1 cent roundings do not drift
// the reported total.
func BuildSummary(rowsScanned int, records []StagedRecord, issues []Issue) Summary {
	s := Summary{
		RowsScanned:   rowsScanned,
		RecordsStaged: len(records),
		TotalSales:    decimal.Zero,
		TotalReturns:  decimal.Zero,
	}
	for _, is := range issues {
		switch is.Severity {
		case constants.SeverityError:
			s.ErrorCount++
		default:
			s.WarningCount++
		}
	}
	for i := range records {
		rec := &records[i]
		if rec.HasIssues {
			s.RecordsWithIssues++
		}
		if rec.SalesAmount != nil {
			s.TotalSales = s.TotalSales.Add(decimal.NewFromFloat(*rec.SalesAmount))
		}
		if rec.Amount != nil {
			s.TotalSales = s.TotalSales.Add(decimal.NewFromFloat(*rec.Amount))
		}
		if rec.ReturnAmount != nil {
			s.TotalReturns = s.TotalReturns.Add(decimal.NewFromFloat(*rec.ReturnAmount))
		}
		widenDateRange(&s, rec.TxnDate)
		widenDateRange(&s, rec.TripDate)
		switch rec.MatchStatus {
		case MatchMatched:
			s.Matched++
		case MatchPartial:
			s.PartialMatched++
		case MatchUnmatched:
			s.Unmatched++
		}
	}
	return s
}

func widenDateRange(s *Summary, t *time.Time) {
	if t == nil {
		return
	}
	if s.DateFrom == nil || t.Before(*s.DateFrom) {
		s.DateFrom = t
	}
	if s.DateTo == nil || t.After(*s.DateTo) {
		s.DateTo = t
	}
}
