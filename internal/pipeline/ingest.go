package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"codremit/internal"
	"codremit/internal/util"
)

// Batch is a parsed input file: the ordered header row plus one record per
// data row. Header order is kept so the exported workbook mirrors the source.
type Batch struct {
	Headers []string
	Records []internal.ShipmentRecord
}

// ReadWorkbookFile loads the first sheet of an xlsx file.
func ReadWorkbookFile(path string) (Batch, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, err
	}
	return ReadWorkbook(blob)
}

// ReadWorkbook parses an xlsx blob: first row is the header, every following
// row becomes a record. Short rows are padded with blanks.
func ReadWorkbook(blob []byte) (Batch, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return Batch{}, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Batch{}, err
	}
	return batchFromRows(rows)
}

// ReadCSV parses comma-separated input with the same header convention as
// ReadWorkbook.
func ReadCSV(r io.Reader) (Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Batch{}, err
	}
	return batchFromRows(rows)
}

func batchFromRows(rows [][]string) (Batch, error) {
	if len(rows) == 0 {
		return Batch{}, errors.New("input has no header row")
	}

	headers := make([]string, 0, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = util.StripBOM(h)
		}
		headers = append(headers, h)
	}

	records := make([]internal.ShipmentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		record := make(internal.ShipmentRecord, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	return Batch{Headers: headers, Records: records}, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
