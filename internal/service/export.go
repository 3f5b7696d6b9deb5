package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportContentType is the MIME type of BuildStatementXLSX output
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []any{
	"Line item",
	"Prior year",
	"Current year",
	"Growth (%)",
	"Share of total assets, prior year (%)",
	"Share of total assets, current year (%)",
}

// BuildStatementXLSX renders the processed table with display formatting,
// plus a summary sheet with growth and liquidity.
func BuildStatementXLSX(s *Snapshot) ([]byte, error) {
	view := s.View()

	f := excelize.NewFile()
	defer f.Close()

	tableSheet := "analysis"
	summarySheet := "summary"
	if err := f.SetSheetName("Sheet1", tableSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(tableSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, row := range view.Rows {
		cells := []any{row.Label, row.Prior, row.Current, row.GrowthPct, row.PriorSharePct, row.CurrentSharePct}
		if err := f.SetSheetRow(tableSheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(tableSheet, "A", "A", 40)
	_ = f.SetColWidth(tableSheet, "B", "F", 18)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(tableSheet, "A1", "F1", bold)

	_ = f.SetCellValue(summarySheet, "A1", "Metric")
	_ = f.SetCellValue(summarySheet, "B1", "Value")
	_ = f.SetCellValue(summarySheet, "A2", "Source file")
	_ = f.SetCellValue(summarySheet, "B2", view.Upload.Filename)
	_ = f.SetCellValue(summarySheet, "A3", "Current assets growth (%)")
	_ = f.SetCellValue(summarySheet, "B3", view.CurrentAssetsGrowth)
	_ = f.SetCellValue(summarySheet, "A4", "Current ratio (N-1)")
	_ = f.SetCellValue(summarySheet, "B4", view.Liquidity.Prior)
	_ = f.SetCellValue(summarySheet, "A5", "Current ratio (N)")
	_ = f.SetCellValue(summarySheet, "B5", view.Liquidity.Current)
	_ = f.SetCellValue(summarySheet, "A6", "Change")
	_ = f.SetCellValue(summarySheet, "B6", view.Liquidity.Delta)
	_ = f.SetCellValue(summarySheet, "A7", "Processed at")
	_ = f.SetCellValue(summarySheet, "B7", view.ProcessedAt.Format("2006-01-02 15:04:05"))
	_ = f.SetCellStyle(summarySheet, "A1", "B1", bold)
	_ = f.SetColWidth(summarySheet, "A", "A", 30)
	_ = f.SetColWidth(summarySheet, "B", "B", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename derives the download name from the uploaded file
func ExportFilename(s *Snapshot) string {
	name := strings.TrimSuffix(filepath.Base(s.Upload.Filename), filepath.Ext(s.Upload.Filename))
	if name == "" || name == "." {
		name = "statement"
	}
	return name + "_analysis.xlsx"
}
