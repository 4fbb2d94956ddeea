package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"TradeFlowERP/api/constants"
)

// Sentinel errors for unreadable uploads. These abort before any batch is
// created.
var (
	ErrUnreadableFile = errors.New("file is not a readable xlsx, xls or csv workbook")
	ErrEmptyFile      = errors.New("workbook has no data rows")
)

// Grid is the raw cell grid of the first worksheet. Rows are ragged: a row
// holds only as many cells as were present in the source.
type Grid [][]string

// Cell returns the trimmed cell at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return NormalizeCell(r[col])
}

// RowEmpty reports whether every cell in the row is empty or whitespace.
func (g Grid) RowEmpty(row int) bool {
	if row < 0 || row >= len(g) {
		return true
	}
	for _, c := range g[row] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NormalizeCell trims a cell and collapses internal whitespace, including
// non-breaking spaces that Excel likes to smuggle into hand-built sheets.
func NormalizeCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, constants.NBSP, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Open parses an uploaded workbook into a Grid. The sniffing order matches
// what the field has taught us about hand-built logistics sheets: try xlsx
// first, then legacy .xls, then CSV (with a Windows-1252 fallback for
// exports from older desktop tools).
func Open(data []byte) (Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	if grid, err := openXLSX(data); err == nil {
		return grid, nil
	}
	if grid, err := openXLS(data); err == nil {
		return grid, nil
	}
	if grid, err := openCSV(data); err == nil {
		return grid, nil
	}
	return nil, ErrUnreadableFile
}

func openXLSX(data []byte) (Grid, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheetName := xl.GetSheetName(0)
	rawRows, err := xl.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rawRows) == 0 {
		return nil, ErrEmptyFile
	}

	// Re-read each cell with GetCellValue so formulas and display formatting
	// resolve to the value the author sees, not the stored raw value.
	grid := make(Grid, len(rawRows))
	for i, rawRow := range rawRows {
		grid[i] = make([]string, len(rawRow))
		for j := range rawRow {
			colName, _ := excelize.ColumnNumberToName(j + 1)
			cellRef := fmt.Sprintf("%s%d", colName, i+1)
			if v, cellErr := xl.GetCellValue(sheetName, cellRef); cellErr == nil && v != "" {
				grid[i][j] = v
			} else {
				grid[i][j] = rawRow[j]
			}
		}
	}
	return grid, nil
}

// openXLS handles legacy Excel files. xlsReader works from a file path, so
// the upload is spooled to a temp file first.
func openXLS(data []byte) (Grid, error) {
	tmp, err := os.CreateTemp("", "import-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, err
	}
	bookSheet, err := book.GetSheet(0)
	if err != nil || bookSheet == nil {
		return nil, errors.New("failed to get xls sheet")
	}

	var grid Grid
	for _, row := range bookSheet.GetRows() {
		var cells []string
		for _, col := range row.GetCols() {
			cells = append(cells, col.GetString())
		}
		grid = append(grid, cells)
	}
	if len(grid) == 0 {
		return nil, ErrEmptyFile
	}
	return grid, nil
}

func openCSV(data []byte) (Grid, error) {
	rows, err := readCSV(bytes.NewReader(data))
	if err != nil || len(rows) == 0 {
		// Some depot PCs still export Windows-1252; re-decode and retry.
		utf8Reader := transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
		rows, err = readCSV(utf8Reader)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func readCSV(r io.Reader) (Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return Grid(rows), nil
}
