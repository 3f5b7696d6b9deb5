package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/liliang-cn/finsight/internal/analysis"
	"github.com/liliang-cn/finsight/internal/domain"
)

func newIngest(maxBytes int64) *IngestService {
	return NewIngestService(analysis.NewCoercer(analysis.DefaultNumberFormat()), maxBytes, nil)
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"bs.xlsx", domain.FileTypeXLSX},
		{"BS.XLSX", domain.FileTypeXLSX},
		{"bs.csv", domain.FileTypeCSV},
		{"bs.pdf", "pdf"},
		{"legacy.xls", "xls"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := DetectFileType(tt.filename); got != tt.want {
			t.Errorf("DetectFileType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestIngestService_CSV(t *testing.T) {
	body := "\ufeffChỉ tiêu;Năm trước;Năm nay\n" +
		"TỔNG CỘNG TÀI SẢN;\"1,000\";1200\n" +
		";;\n" +
		"Dự phòng;(50);abc\n" +
		"Chỉ có tên\n"

	upload, table, warnings, err := newIngest(0).Read(strings.NewReader(body), "bs.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %+v", warnings)
	}
	if upload.Rows != 3 || upload.FileType != domain.FileTypeCSV || upload.ID == "" {
		t.Errorf("upload = %+v", upload)
	}

	want := []domain.LineItem{
		{Label: "TỔNG CỘNG TÀI SẢN", Prior: 1000, Current: 1200},
		{Label: "Dự phòng", Prior: -50, Current: 0},
		{Label: "Chỉ có tên", Prior: 0, Current: 0},
	}
	for i, item := range table.Items {
		if item.Label != want[i].Label || item.Prior != want[i].Prior || item.Current != want[i].Current {
			t.Errorf("row %d = %+v, want %+v", i, item, want[i])
		}
	}
}

func TestIsSupported_LegacyExcel(t *testing.T) {
	// excelize reads OOXML workbooks only
	if IsSupported(DetectFileType("legacy.xls")) {
		t.Error("xls should not be supported")
	}
	_, _, _, err := newIngest(0).Read(strings.NewReader("x"), "legacy.xls")
	if domain.KindOf(err) != domain.KindUnreadableFile {
		t.Errorf("KindOf() = %q, want %q", domain.KindOf(err), domain.KindUnreadableFile)
	}
}

func TestIngestService_BlankHeaderCellCSV(t *testing.T) {
	body := "Chỉ tiêu,Năm trước,\n" +
		"TỔNG CỘNG TÀI SẢN,1000,1200\n" +
		"TÀI SẢN NGẮN HẠN,400,600\n"

	_, table, warnings, err := newIngest(0).Read(strings.NewReader(body), "bs.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %+v", warnings)
	}
	if table.Len() != 2 || table.Items[0].Current != 1200 || table.Items[1].Current != 600 {
		t.Errorf("table = %+v", table.Items)
	}
}

func TestIngestService_BlankHeaderCellXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Chỉ tiêu", "Năm trước"},
		{"TỔNG CỘNG TÀI SẢN", 1000, 1200},
		{"TÀI SẢN NGẮN HẠN", 400, 600},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	_, table, _, err := newIngest(0).Read(&buf, "bs.xlsx")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.Len() != 2 || table.Items[0].Prior != 1000 || table.Items[0].Current != 1200 {
		t.Errorf("table = %+v", table.Items)
	}
}

func TestIngestService_NarrowFileIsStructural(t *testing.T) {
	body := "Chỉ tiêu,Năm trước,\nTỔNG CỘNG TÀI SẢN,1000\n"
	_, _, _, err := newIngest(0).Read(strings.NewReader(body), "bs.csv")
	if domain.KindOf(err) != domain.KindStructural {
		t.Fatalf("KindOf() = %q, want %q", domain.KindOf(err), domain.KindStructural)
	}
}

func TestIngestService_ExtraColumnsWarn(t *testing.T) {
	body := "a,b,c,d\nTỔNG CỘNG TÀI SẢN,1,2,99\n"
	_, table, warnings, err := newIngest(0).Read(strings.NewReader(body), "bs.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(warnings))
	}
	if table.Items[0].Current != 2 {
		t.Errorf("Current = %v, want 2", table.Items[0].Current)
	}
}

func TestIngestService_SizeLimit(t *testing.T) {
	body := "a,b,c\n" + strings.Repeat("x,1,2\n", 100)
	_, _, _, err := newIngest(64).Read(strings.NewReader(body), "bs.csv")
	if domain.KindOf(err) != domain.KindUnreadableFile {
		t.Fatalf("KindOf() = %q, want %q", domain.KindOf(err), domain.KindUnreadableFile)
	}
}

func TestIngestService_EmptyFile(t *testing.T) {
	_, _, _, err := newIngest(0).Read(strings.NewReader(""), "bs.csv")
	if domain.KindOf(err) != domain.KindUnreadableFile {
		t.Fatalf("KindOf() = %q, want %q", domain.KindOf(err), domain.KindUnreadableFile)
	}
}

func TestIngestService_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Chỉ tiêu", "Năm trước", "Năm nay"},
		{"TỔNG CỘNG TÀI SẢN", 1000.5, 1200},
		{"TÀI SẢN NGẮN HẠN", "400", 600},
		{"NỢ NGẮN HẠN", nil, 300},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	_, table, _, err := newIngest(0).Read(&buf, "bs.xlsx")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("rows = %d, want 3", table.Len())
	}
	if table.Items[0].Prior != 1000.5 || table.Items[0].Current != 1200 {
		t.Errorf("row 0 = %+v", table.Items[0])
	}
	if table.Items[1].Prior != 400 {
		t.Errorf("text cell Prior = %v, want 400", table.Items[1].Prior)
	}
	if table.Items[2].Prior != 0 || table.Items[2].Current != 300 {
		t.Errorf("row 2 = %+v", table.Items[2])
	}
}
