package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// Row is one raw product line from an import file. Cells are trimmed but not validated.
type Row struct {
	// Line is the 1-based record number; the header is record 1.
	Line          int    `csv:"-"`
	Name          string `csv:"name"`
	Slug          string `csv:"slug"`
	Description   string `csv:"description"`
	Tags          string `csv:"tags"`
	Price         string `csv:"price"`
	InStock       string `csv:"in_stock"`
	ImageFilename string `csv:"image_filename"`
}

// ReadFile reads rows from a CSV file, or from the first sheet of an .xlsx workbook.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(f)
	}
	return ReadCSV(f)
}

func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return decodeRecords(records)
}

func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return decodeRecords(records)
}

// decodeRecords maps records onto Row by header name. Header names are matched
// case-insensitively; blank lines are skipped.
func decodeRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("import file is empty")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	if !contains(header, "name") || !contains(header, "price") {
		return nil, fmt.Errorf("import file must have name and price columns, got %v", header)
	}

	body := [][]string{header}
	lines := []int{}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		padded := make([]string, len(header))
		for j := range padded {
			if j < len(rec) {
				padded[j] = strings.TrimSpace(rec[j])
			}
		}
		body = append(body, padded)
		lines = append(lines, i+2)
	}

	var rows []Row
	if err := gocsv.UnmarshalCSV(&recordReader{records: body}, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	for i := range rows {
		rows[i].Line = lines[i]
	}
	return rows, nil
}

// recordReader feeds already split records to gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
