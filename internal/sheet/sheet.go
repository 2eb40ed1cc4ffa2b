// Package sheet reads and writes vocabulary spreadsheets.
//
// The workbook layout is one sheet named "Vocabulary" whose first row is a
// header and every following row one record:
//
//	English | Vietnamese | IPA | Example | Collection | Part of speech | Step | Target
//
// CSV files with the same columns are accepted on import.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/schedule"
)

// SheetName is the worksheet written by Export and preferred by Import.
const SheetName = "Vocabulary"

// Header is the first row of an exported sheet.
var Header = []string{"English", "Vietnamese", "IPA", "Example", "Collection", "Part of speech", "Step", "Target"}

// ErrIncompleteRow marks a row without English or Vietnamese text.
var ErrIncompleteRow = errors.New("english and vietnamese are required")

// Row is one data row. Line is the 1-based row number in the source file.
type Row struct {
	Line         int
	English      string
	Vietnamese   string
	IPA          string
	Example      string
	Collection   string
	PartOfSpeech string
	Step         string
	Target       string
}

// RowError reports a row that Import skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

// Export writes items as an xlsx workbook to w.
func Export(w io.Writer, items []domain.Vocabulary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", "H1", bold)
	}
	_ = f.SetColWidth(SheetName, "A", "B", 24)
	_ = f.SetColWidth(SheetName, "D", "D", 40)

	for i, v := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{v.English, v.Vietnamese, v.IPA, v.Example, v.Collection, v.PartOfSpeech, v.Step, v.Target}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// Import reads an xlsx workbook from r. Rows that lack English or Vietnamese
// are returned as RowErrors; blank rows are ignored. The header row is
// skipped when its first cell reads "English".
func Import(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := SheetName
	if idx, _ := f.GetSheetIndex(SheetName); idx < 0 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		name = list[0]
	}
	records, err := f.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	rows, rowErrs := parse(records)
	return rows, rowErrs, nil
}

// ImportCSV reads comma-separated rows in the same column order as Import.
func ImportCSV(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	rows, rowErrs := parse(records)
	return rows, rowErrs, nil
}

// Decode picks Import or ImportCSV from the file name's extension.
func Decode(r io.Reader, filename string) ([]Row, []RowError, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ImportCSV(r)
	}
	return Import(r)
}

func parse(records [][]string) ([]Row, []RowError) {
	rows := make([]Row, 0, len(records))
	var rowErrs []RowError
	if len(records) > 0 && len(records[0]) > 0 {
		// Excel's "CSV UTF-8" starts the file with a byte order mark.
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	for i, rec := range records {
		line := i + 1
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Header[0]) {
			continue
		}
		if blank(rec) {
			continue
		}
		row := Row{
			Line:         line,
			English:      cell(rec, 0),
			Vietnamese:   cell(rec, 1),
			IPA:          cell(rec, 2),
			Example:      cell(rec, 3),
			Collection:   cell(rec, 4),
			PartOfSpeech: cell(rec, 5),
			Step:         cell(rec, 6),
			Target:       normalizeDate(cell(rec, 7)),
		}
		if row.English == "" || row.Vietnamese == "" {
			rowErrs = append(rowErrs, RowError{Line: line, Err: ErrIncompleteRow})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// dateLayouts are display formats spreadsheet apps commonly apply to date
// cells. The first match wins.
var dateLayouts = []string{
	schedule.DateLayout,
	"2006/01/02",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// normalizeDate rewrites s as YYYY-MM-DD when it matches a known layout and
// returns it unchanged otherwise, leaving validation to the caller.
func normalizeDate(s string) string {
	if s == "" || schedule.ValidDate(s) {
		return s
	}
	for _, layout := range dateLayouts[1:] {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(schedule.DateLayout)
		}
	}
	return s
}
