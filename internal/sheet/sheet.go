// Package sheet reads and writes the spreadsheet layout used for bulk
// question import and export: positional columns topic tag, question text,
// numeric answer and optional time in seconds, under a single header row.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ezemirmul/estimator/internal/models"
)

// Header is the first row of the export layout. It is skipped on import.
var Header = []string{"Tag", "Question", "Answer", "Time"}

// SheetName is the worksheet exports are written to.
const SheetName = "Questions"

// Parse picks the format from the file extension. Anything that is not
// .xlsx is treated as CSV.
func Parse(filename string, r io.Reader) ([]models.ImportRow, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}

// ParseCSV reads the 4-column layout from CSV data.
func ParseCSV(r io.Reader) ([]models.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may be ragged; validation handles gaps
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rawRows(records), nil
}

// ParseXLSX reads the 4-column layout from the first worksheet of an xlsx
// workbook.
func ParseXLSX(r io.Reader) ([]models.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rawRows(records), nil
}

// rawRows converts tabular records into import rows, dropping the header row
// and keeping the original 1-based row numbers for error reporting.
func rawRows(records [][]string) []models.ImportRow {
	var rows []models.ImportRow
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		rows = append(rows, models.ImportRow{
			Line:     i + 1,
			Topic:    cell(rec, 0),
			Question: cell(rec, 1),
			Answer:   cell(rec, 2),
			Time:     cell(rec, 3),
		})
	}
	return rows
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// WriteCSV writes the questions in the export layout, header row included
// and time rendered even when it equals the default.
func WriteCSV(w io.Writer, qs []models.Question) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, q := range qs {
		row := []string{
			q.Topic,
			q.Question,
			formatNumber(q.Answer),
			formatNumber(q.Time),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the questions as an xlsx workbook in the export layout.
func WriteXLSX(w io.Writer, qs []models.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	for col, title := range Header {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}
	for i, q := range qs {
		row := i + 2
		values := []any{q.Topic, q.Question, q.Answer, q.Time}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, name, v); err != nil {
		return fmt.Errorf("set cell %s: %w", name, err)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
