package gateway

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"discount-audit/internal/domain"
	"discount-audit/internal/logger"
)

// Supported CSV encodings.
const (
	EncodingAuto   = "auto"
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

// ReaderOptions describes where the header sits and how delimited files are encoded.
type ReaderOptions struct {
	HeaderRow int // 0-based; rows above it are banners and are skipped
	Encoding  string
	Delimiter rune
}

// FileTableRepository implements the TableRepository interface for CSV and XLSX files.
type FileTableRepository struct {
	opts   ReaderOptions
	logger *zap.Logger
}

// NewFileTableRepository creates a new repository instance.
func NewFileTableRepository(opts ReaderOptions, log *zap.Logger) *FileTableRepository {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Encoding == "" {
		opts.Encoding = EncodingAuto
	}
	return &FileTableRepository{opts: opts, logger: logger.OrNop(log)}
}

// LoadTable reads the first sheet of an XLSX file or a delimited text file into a table.
func (r *FileTableRepository) LoadTable(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows  [][]string
		lines []int
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		rows, lines, err = r.readDelimited(path)
	case ".xlsx", ".xlsm":
		rows, lines, err = r.readSpreadsheet(path)
	default:
		return nil, &domain.IngestionError{Path: path, Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	if err != nil {
		return nil, err
	}

	return r.buildTable(path, rows, lines)
}

// readDelimited returns the non-blank records together with the physical line each starts on.
func (r *FileTableRepository) readDelimited(path string) ([][]string, []int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &domain.IngestionError{Path: path, Reason: "failed to open file", Err: err}
	}

	text, err := decode(data, r.opts.Encoding)
	if err != nil {
		return nil, nil, &domain.IngestionError{Path: path, Reason: "failed to decode file", Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = r.opts.Delimiter
	// Banner rows rarely have as many fields as the header.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &domain.IngestionError{Path: path, Reason: "malformed delimited text", Err: err}
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}
	return rows, lines, nil
}

// readSpreadsheet returns the raw cell values of the first sheet. Display formats
// such as thousands separators or percentages are not applied.
func (r *FileTableRepository) readSpreadsheet(path string) ([][]string, []int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, &domain.IngestionError{Path: path, Reason: "failed to open spreadsheet", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &domain.IngestionError{Path: path, Reason: "spreadsheet has no sheets"}
	}
	if len(sheets) > 1 {
		r.logger.Debug("reading first sheet only", zap.String("path", path), zap.String("sheet", sheets[0]), zap.Int("sheets", len(sheets)))
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, &domain.IngestionError{Path: path, Reason: "failed to read sheet " + sheets[0], Err: err}
	}

	// GetRows keeps empty rows, so the index is the sheet row number.
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return rows, lines, nil
}

func (r *FileTableRepository) buildTable(path string, rows [][]string, lines []int) (*domain.Table, error) {
	if len(rows) <= r.opts.HeaderRow {
		return nil, &domain.IngestionError{Path: path, Reason: fmt.Sprintf("no header row at row %d", r.opts.HeaderRow+1)}
	}

	header := rows[r.opts.HeaderRow]
	if isBlank(header) {
		return nil, &domain.IngestionError{Path: path, Reason: fmt.Sprintf("header row %d is empty", r.opts.HeaderRow+1)}
	}

	table := &domain.Table{
		Source:     path,
		Header:     header,
		HeaderLine: lines[r.opts.HeaderRow],
	}
	for i := r.opts.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		// Spreadsheet rows drop trailing empty cells.
		for len(row) < len(header) {
			row = append(row, "")
		}
		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, lines[i])
	}

	r.logger.Debug("table loaded", zap.String("path", path), zap.Int("columns", len(header)), zap.Int("rows", len(table.Rows)))
	return table, nil
}

// decode converts data to UTF-8. In auto mode valid UTF-8 is kept and anything else
// is read as ISO-8859-1, which accepts every byte sequence.
func decode(data []byte, encoding string) ([]byte, error) {
	switch encoding {
	case EncodingAuto:
		if utf8.Valid(data) {
			return decode(data, EncodingUTF8)
		}
		return decode(data, EncodingLatin1)
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("input is not valid UTF-8")
		}
		return unicode.UTF8BOM.NewDecoder().Bytes(data)
	case EncodingLatin1:
		return charmap.ISO8859_1.NewDecoder().Bytes(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
