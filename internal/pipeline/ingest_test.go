package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Customer Code", "COD amount", "Freight Charge"},
		{"520", 100, 37.5},
		{"9999", "60", ""},
	})

	batch, err := ReadWorkbook(blob)
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Headers) != 3 || batch.Headers[0] != "Customer Code" {
		t.Fatalf("headers: %v", batch.Headers)
	}
	if len(batch.Records) != 2 {
		t.Fatalf("records=%d", len(batch.Records))
	}
	if batch.Records[0]["Customer Code"] != "520" || batch.Records[0]["COD amount"] != "100" {
		t.Fatalf("row 0: %v", batch.Records[0])
	}
	if batch.Records[1]["Freight Charge"] != "" {
		t.Fatalf("row 1: %v", batch.Records[1])
	}
}

func TestReadWorkbookSkipsBlankRows(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Customer Code"},
		{""},
		{"520"},
	})

	batch, err := ReadWorkbook(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records=%d", len(batch.Records))
	}
}

func TestReadCSVStripsHeaderBOM(t *testing.T) {
	input := "\uFEFFCustomer Code,COD amount\n520,100\n"

	batch, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if batch.Headers[0] != "Customer Code" {
		t.Fatalf("headers: %q", batch.Headers[0])
	}
	if batch.Records[0]["Customer Code"] != "520" {
		t.Fatalf("row 0: %v", batch.Records[0])
	}
}

func TestReadCSVShortRowsPadded(t *testing.T) {
	input := "Customer Code,COD amount,Status\n520,100\n"

	batch, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if got := batch.Records[0]["Status"]; got != "" {
		t.Fatalf("status %q", got)
	}
}

func TestReadWorkbookEmpty(t *testing.T) {
	blob := mkXLSX([][]any{})
	if _, err := ReadWorkbook(blob); err == nil {
		t.Fatal("expected error for empty sheet")
	}
}
