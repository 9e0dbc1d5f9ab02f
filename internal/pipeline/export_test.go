package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"codremit/internal"
	"codremit/internal/util"
)

func TestExportWorkbook(t *testing.T) {
	headers := []string{"Customer Code", "Waybill", "COD amount"}
	records := []internal.ShipmentRecord{
		{"Customer Code": "9999", "Waybill": "W-1", "COD amount": "100", "Total Freight": "20.00", "COD Amount After Calculation": "80.00"},
		{"Customer Code": "520", "Waybill": "W-2", "COD amount": "50", "Total Freight": "5.00", "COD Amount After Calculation": "50.00"},
		{"Customer Code": "9999", "Waybill": "W-3", "COD amount": "30", "Total Freight": "10.00", "COD Amount After Calculation": "20.00"},
	}
	summaries := []internal.CustomerSummary{
		{CustomerCode: "9999", TotalNetCOD: 100},
		{CustomerCode: "520", TotalNetCOD: 50, IsWhitelisted: true, ClientName: util.StringPtr("FACES")},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := ExportWorkbook(headers, records, summaries, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"9999", "520", "Summary"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets: %v", sheets)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Fatalf("sheets: %v", sheets)
		}
	}

	rows, err := f.GetRows("9999")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d", len(rows))
	}
	// Header: source columns then computed columns.
	if rows[0][0] != "Customer Code" || rows[0][3] != "Total Freight" || rows[0][4] != "COD Amount After Calculation" {
		t.Fatalf("header row: %v", rows[0])
	}
	if rows[1][1] != "W-1" || rows[1][4] != "80.00" {
		t.Fatalf("data row: %v", rows[1])
	}
	if rows[2][1] != "W-3" {
		t.Fatalf("data row: %v", rows[2])
	}

	summaryRows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaryRows) != 3 {
		t.Fatalf("summary rows=%d", len(summaryRows))
	}
	if summaryRows[2][0] != "520" || summaryRows[2][1] != "FACES" || summaryRows[2][3] != "50.00" {
		t.Fatalf("summary row: %v", summaryRows[2])
	}
}

func TestExportWorkbookUnspecifiedCustomer(t *testing.T) {
	headers := []string{"Customer Code", "COD amount"}
	records := []internal.ShipmentRecord{
		{"Customer Code": "", "COD amount": "10"},
	}
	summaries := []internal.CustomerSummary{{CustomerCode: "", TotalNetCOD: 10}}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := ExportWorkbook(headers, records, summaries, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("UNSPECIFIED"); idx < 0 {
		t.Fatalf("sheets: %v", f.GetSheetList())
	}
}
