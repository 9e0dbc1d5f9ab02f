package pipeline

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"codremit/internal"
	"codremit/internal/util"
)

const summarySheet = "Summary"

// ExportWorkbook writes the processed batch: one sheet per customer code in
// first-appearance order, source columns first and the computed columns
// appended, plus a Summary sheet of per-customer totals.
func ExportWorkbook(headers []string, records []internal.ShipmentRecord, summaries []internal.CustomerSummary, outputPath string) error {
	f := excelize.NewFile()

	columns := exportColumns(headers)
	grouped := groupByCustomer(records)

	first := true
	for _, summary := range summaries {
		rows, ok := grouped[summary.CustomerCode]
		if !ok {
			continue
		}
		sheet := sheetName(summary.CustomerCode)
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}
		writeSheet(f, sheet, columns, rows)
	}

	if err := writeSummarySheet(f, summaries); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// exportColumns appends the computed columns to the source header order,
// skipping any the source already carried.
func exportColumns(headers []string) []string {
	columns := make([]string, 0, len(headers)+2)
	seen := map[string]struct{}{}
	for _, h := range headers {
		if h == "" {
			continue
		}
		columns = append(columns, h)
		seen[h] = struct{}{}
	}
	for _, extra := range []string{internal.ColTotalFreight, internal.ColCODAfterCalc} {
		if _, ok := seen[extra]; !ok {
			columns = append(columns, extra)
		}
	}
	return columns
}

func groupByCustomer(records []internal.ShipmentRecord) map[string][]internal.ShipmentRecord {
	grouped := map[string][]internal.ShipmentRecord{}
	for _, record := range records {
		code := util.CleanCode(util.Field(record, internal.ColCustomerCode))
		grouped[code] = append(grouped[code], record)
	}
	return grouped
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows []internal.ShipmentRecord) {
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	for r, row := range rows {
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, util.Field(row, col))
		}
	}
}

func writeSummarySheet(f *excelize.File, summaries []internal.CustomerSummary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	headers := []string{"Customer Code", "Client Name", "Whitelisted", "Total Net COD"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(summarySheet, cell, h)
	}

	for i, summary := range summaries {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(summarySheet, cell, value)
		}
		set(1, summary.CustomerCode)
		set(2, derefString(summary.ClientName))
		set(3, summary.IsWhitelisted)
		set(4, strconv.FormatFloat(summary.TotalNetCOD, 'f', 2, 64))
	}
	return nil
}

// sheetName fits a customer code into the workbook's 31 character sheet
// name limit. Records without a usable code group under one sheet.
func sheetName(customerCode string) string {
	if customerCode == "" {
		return "UNSPECIFIED"
	}
	if len(customerCode) > 31 {
		return customerCode[:31]
	}
	return customerCode
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
