package buvette

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Export surface for the admin-gated commands: stock snapshots and
// ledger ranges, as CSV or as a spreadsheet for the treasurer.

var stockHeader = []string{"Barcode", "Product", "Price", "Stock"}

// ExportStockCSV writes a stock snapshot as CSV: header plus one row
// per entry, prices as two-decimal strings.
func ExportStockCSV(w io.Writer, entries []StockEntry) error {
	cw := csv.NewWriter(w)
	cw.Write(stockHeader)
	for _, e := range entries {
		cw.Write([]string{string(e.Code), e.Name, e.Price.Fixed(), fmt.Sprint(e.Stock)})
	}
	cw.Flush()
	return cw.Error()
}

// ExportStockXLSX writes a stock snapshot as a single-sheet workbook.
func ExportStockXLSX(path string, entries []StockEntry) error {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{string(e.Code), e.Name, e.Price.Fixed(), e.Stock})
	}
	return writeWorkbook(path, stockHeader, rows)
}

// ExportRecordsXLSX writes ledger records as a single-sheet workbook,
// with the same columns as the CSV ledger.
func ExportRecordsXLSX(path string, records []Record) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{r.Time.Format(ledgerTimeFormat), r.Member, r.Product, r.Amount.Fixed(), r.Method})
	}
	return writeWorkbook(path, ledgerHeader, rows)
}

func writeWorkbook(path string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
