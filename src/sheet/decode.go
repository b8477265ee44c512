// backend/src/sheet/decode.go
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/fundfolio/backend/src/logger"
)

// Decode turns an uploaded file into one Grid per sheet. CSV input yields a
// single grid; XLSX workbooks yield one per visible sheet. The file name
// only selects the container format.
func Decode(r io.Reader, fileName string) ([]*Grid, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return DecodeWorkbook(r)
	default:
		g, err := DecodeCSV(r, sheetNameFromFile(fileName))
		if err != nil {
			return nil, err
		}
		return []*Grid{g}, nil
	}
}

// DecodeCSV reads delimited text into a Grid. Cells that parse as plain
// numbers are typed numeric; everything else stays text. CSV carries no
// display formats, so no percent hints are set.
func DecodeCSV(r io.Reader, name string) (*Grid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	grid := &Grid{Name: name}
	for _, record := range records {
		row := make([]Cell, len(record))
		for i, raw := range record {
			row[i] = newCell(raw, false)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

// DecodeWorkbook reads an XLSX container into one Grid per sheet. Cells are
// read raw, so date and time cells surface as their serial numbers and
// percent-formatted cells as their unscaled fractions; the percent format
// itself is carried as a hint on the cell.
func DecodeWorkbook(r io.Reader) ([]*Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	percentStyles := make(map[int]bool)

	var grids []*Grid
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
		}

		grid := &Grid{Name: sheetName}
		for ri, rawRow := range rows {
			row := make([]Cell, len(rawRow))
			for ci, raw := range rawRow {
				percent := false
				if raw != "" {
					percent = cellHasPercentFormat(f, sheetName, ci, ri, percentStyles)
				}
				row[ci] = newCell(raw, percent)
			}
			grid.Rows = append(grid.Rows, row)
		}
		grids = append(grids, grid)
	}

	if len(grids) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return grids, nil
}

// cellHasPercentFormat inspects the cell's number format. Style lookups are
// memoized per style ID since statements reuse a handful of styles.
func cellHasPercentFormat(f *excelize.File, sheetName string, col, row int, memo map[int]bool) bool {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	styleID, err := f.GetCellStyle(sheetName, axis)
	if err != nil {
		return false
	}
	if hit, ok := memo[styleID]; ok {
		return hit
	}

	percent := false
	if style, err := f.GetStyle(styleID); err == nil && style != nil {
		// Built-in formats 9 ("0%") and 10 ("0.00%"), or any custom format
		// carrying a percent sign.
		if style.NumFmt == 9 || style.NumFmt == 10 {
			percent = true
		} else if style.CustomNumFmt != nil && strings.Contains(*style.CustomNumFmt, "%") {
			percent = true
		}
	} else if err != nil {
		logger.L.Debug("could not resolve cell style", "sheet", sheetName, "cell", axis, "error", err)
	}
	memo[styleID] = percent
	return percent
}

func newCell(raw string, percentFmt bool) Cell {
	c := Cell{Raw: raw, PercentFmt: percentFmt}
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && strings.TrimSpace(raw) != "" {
		c.Number = v
		c.IsNumber = true
	}
	return c
}

func sheetNameFromFile(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
