package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/liliang-cn/finsight/internal/analysis"
	"github.com/liliang-cn/finsight/internal/domain"
)

// statementColumns is the positional layout: label, prior value, current value
const statementColumns = 3

// DetectFileType detects file type from filename
func DetectFileType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return domain.FileTypeXLSX
	case ".csv", ".txt":
		return domain.FileTypeCSV
	case "":
		return ""
	default:
		return ext[1:] // remove leading dot
	}
}

// IsSupported checks if file type is supported
func IsSupported(fileType string) bool {
	return fileType == domain.FileTypeXLSX || fileType == domain.FileTypeCSV
}

// IngestService turns an uploaded spreadsheet into a statement table
type IngestService struct {
	coercer  *analysis.Coercer
	maxBytes int64
	logger   *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(coercer *analysis.Coercer, maxBytes int64, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		coercer:  coercer,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Read parses an uploaded file. The first row is a header and is skipped;
// columns are taken positionally as (label, prior, current) whatever the
// header says.
func (s *IngestService) Read(r io.Reader, filename string) (domain.Upload, domain.StatementTable, []Warning, error) {
	upload := domain.Upload{
		ID:       uuid.New().String(),
		Filename: filename,
		FileType: DetectFileType(filename),
	}
	if !IsSupported(upload.FileType) {
		return upload, domain.StatementTable{}, nil, domain.E(domain.KindUnreadableFile, "read upload",
			fmt.Errorf("%w: unsupported file type %q", domain.ErrUnreadableFile, upload.FileType))
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return upload, domain.StatementTable{}, nil, domain.E(domain.KindUnreadableFile, "read upload",
			fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err))
	}
	upload.FileSize = int64(len(data))
	if s.maxBytes > 0 && upload.FileSize > s.maxBytes {
		return upload, domain.StatementTable{}, nil, domain.E(domain.KindUnreadableFile, "read upload",
			fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUnreadableFile, s.maxBytes))
	}

	var rows [][]any
	switch upload.FileType {
	case domain.FileTypeXLSX:
		rows, err = readXLSX(bytes.NewReader(data))
	case domain.FileTypeCSV:
		rows, err = readCSV(bytes.NewReader(data))
	}
	if err != nil {
		return upload, domain.StatementTable{}, nil, domain.E(domain.KindUnreadableFile, "read upload",
			fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err))
	}

	table, warnings, err := s.toTable(rows)
	if err != nil {
		return upload, domain.StatementTable{}, nil, err
	}
	upload.Rows = table.Len()

	s.logger.Debug("Statement file parsed",
		zap.String("filename", filename),
		zap.String("file_type", upload.FileType),
		zap.Int("rows", upload.Rows),
	)
	return upload, table, warnings, nil
}

func (s *IngestService) toTable(rows [][]any) (domain.StatementTable, []Warning, error) {
	if len(rows) == 0 {
		return domain.StatementTable{}, nil, domain.E(domain.KindUnreadableFile, "read upload",
			fmt.Errorf("%w: file contains no rows", domain.ErrUnreadableFile))
	}

	// columns are positional, so the header text (blank cells included)
	// does not decide the width
	width := 0
	for _, row := range rows {
		width = max(width, len(trimTrailingBlank(row)))
	}
	if width < statementColumns {
		return domain.StatementTable{}, nil, domain.E(domain.KindStructural, "read upload",
			fmt.Errorf("expected %d columns (line item, prior year, current year), found %d", statementColumns, width))
	}

	var warnings []Warning
	if width > statementColumns {
		warnings = append(warnings, Warning{
			Kind:    domain.KindStructural,
			Message: fmt.Sprintf("file has %d columns; only the first %d are used", width, statementColumns),
		})
	}

	items := make([]domain.LineItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]any, statementColumns)
		copy(cells, row)
		if isBlankRow(cells) {
			continue
		}
		items = append(items, domain.LineItem{
			Label:   strings.TrimSpace(cellText(cells[0])),
			Prior:   s.coercer.Coerce(cells[1]),
			Current: s.coercer.Coerce(cells[2]),
		})
	}
	return domain.StatementTable{Items: items}, warnings, nil
}

// readXLSX reads the first sheet. Numeric cells come back as float64 so the
// configured text locale does not apply to them.
func readXLSX(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	rows := make([][]any, len(raw))
	for i, cols := range raw {
		rows[i] = make([]any, len(cols))
		for j, v := range cols {
			rows[i][j] = v
			if i == 0 || j == 0 || v == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				continue
			}
			if typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					rows[i][j] = n
				}
			}
		}
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]any, error) {
	br := bufio.NewReader(r)
	// UTF-8 BOM written by spreadsheet exports
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	first, _ := br.Peek(4096)

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(first)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = make([]any, len(rec))
		for j, v := range rec {
			rows[i][j] = v
		}
	}
	return rows, nil
}

// detectDelimiter picks the most frequent of ',', ';' and tab on the header line
func detectDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func isBlankRow(cells []any) bool {
	for _, c := range cells {
		if strings.TrimSpace(cellText(c)) != "" {
			return false
		}
	}
	return true
}

func trimTrailingBlank(row []any) []any {
	n := len(row)
	for n > 0 && strings.TrimSpace(cellText(row[n-1])) == "" {
		n--
	}
	return row[:n]
}
