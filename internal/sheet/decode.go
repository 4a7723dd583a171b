// Package sheet reads uploaded price lists into raw grids and writes
// comparison grids back out as spreadsheets.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"pricecompare/internal/catalog"
)

var (
	ErrNoSheets   = errors.New("no sheets")
	ErrEmptySheet = errors.New("empty sheet")
)

// oleSignature opens every compound document, including BIFF .xls workbooks.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Decoder reads the first sheet of Excel workbooks and CSV files.
type Decoder struct{}

func NewDecoder() Decoder { return Decoder{} }

// Decode reads .csv files as CSV. Other files are workbooks: compound
// documents go to the BIFF reader and everything else to excelize, so a
// renamed .xlsx still opens.
func (Decoder) Decode(name string, data []byte) (catalog.RawSheet, error) {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return processCSV(bytes.NewReader(data))
	}
	if bytes.HasPrefix(data, oleSignature) {
		return processXLS(bytes.NewReader(data))
	}
	return processExcel(bytes.NewReader(data))
}

func processCSV(r io.Reader) (catalog.RawSheet, error) {
	var data catalog.RawSheet
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return data, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return data, ErrEmptySheet
	}
	data.Rows = rows
	return data, nil
}

func processExcel(r io.Reader) (catalog.RawSheet, error) {
	var data catalog.RawSheet
	f, err := excelize.OpenReader(r)
	if err != nil {
		return data, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return data, ErrNoSheets
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return data, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return data, ErrEmptySheet
	}
	data.Rows = rows
	return data, nil
}

func processXLS(r io.ReadSeeker) (data catalog.RawSheet, err error) {
	// The BIFF reader panics on truncated records.
	defer func() {
		if p := recover(); p != nil {
			data, err = catalog.RawSheet{}, fmt.Errorf("read xls: %v", p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return data, fmt.Errorf("open xls: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return data, ErrNoSheets
	}
	first := wb.GetSheet(0)
	if first == nil || first.MaxRow == 0 {
		return data, ErrEmptySheet
	}
	// ReadAllCells spans every sheet; capping it at the first sheet's row
	// count keeps the read to that sheet.
	rows := wb.ReadAllCells(int(first.MaxRow) + 1)
	if len(rows) == 0 {
		return data, ErrEmptySheet
	}
	data.Rows = rows
	return data, nil
}
