package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

// ImportRow is one spreadsheet row. Every column is read as text and
// validated per row so a bad cell fails only its own row.
type ImportRow struct {
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Price       string `csv:"price"`
	RentPrice   string `csv:"rentPrice"`
	Images      string `csv:"images"`
	Sizes       string `csv:"sizes"`
	Colors      string `csv:"colors"`
	Category    string `csv:"category"`
	Barcode     string `csv:"barcode"`
	InStock     string `csv:"inStock"`
	StockCount  string `csv:"stockCount"`
}

// ImportResult tallies a bulk import
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// Import reads products from a CSV or XLSX file (picked by extension) and
// creates one product per row. Row failures are collected, never fatal.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	rows, lines, err := readImportRows(filename, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.Invalidf("file is empty or has no valid data")
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		rowNumber := i + 2
		if i+1 < len(lines) {
			rowNumber = lines[i+1]
		}
		if err := s.importRow(ctx, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, importErrorMessage(rowNumber, err))
			continue
		}
		result.Success++
	}
	zap.L().Info("bulk import finished",
		zap.String("file", filename),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed))
	return result, nil
}

var errMissingRequired = errors.New("Missing required fields (name, price, or rentPrice)")

func importErrorMessage(rowNumber int, err error) string {
	switch {
	case errors.Is(err, errMissingRequired):
		return fmt.Sprintf("Row %d: %s", rowNumber, errMissingRequired.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return fmt.Sprintf("Row %d: Duplicate barcode", rowNumber)
	default:
		return fmt.Sprintf("Row %d: %s", rowNumber, domain.Message(err))
	}
}

func (s *Service) importRow(ctx context.Context, row ImportRow) error {
	name := strings.TrimSpace(row.Name)
	rawPrice := strings.TrimSpace(row.Price)
	rawRent := strings.TrimSpace(row.RentPrice)
	if name == "" || rawPrice == "" || rawRent == "" {
		return errMissingRequired
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return domain.Invalidf("invalid price %q", rawPrice)
	}
	rent, err := decimal.NewFromString(rawRent)
	if err != nil {
		return domain.Invalidf("invalid rentPrice %q", rawRent)
	}

	images := domain.ParseStringList(row.Images)
	sizes := domain.ParseStringList(row.Sizes)
	colors := domain.ParseStringList(row.Colors)
	in := ProductInput{
		Name:        &name,
		Description: &row.Description,
		Price:       &price,
		RentPrice:   &rent,
		Images:      &images,
		Sizes:       &sizes,
		Colors:      &colors,
		Category:    &row.Category,
		Barcode:     &row.Barcode,
	}
	if raw := strings.TrimSpace(row.StockCount); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || !d.IsInteger() {
			return domain.Invalidf("invalid stockCount %q", raw)
		}
		n := int(d.IntPart())
		in.StockCount = &n
	}
	if strings.EqualFold(strings.TrimSpace(row.InStock), "false") {
		f := false
		in.InStock = &f
	}
	_, err = s.Create(ctx, in)
	return err
}

// readImportRows decodes the file and returns, next to the rows, the physical
// line of every record read (lines[0] is the header). Empty lines are skipped.
func readImportRows(filename string, r io.Reader) ([]ImportRow, []int, error) {
	var (
		rows []ImportRow
		in   lineReader
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		sheet, err := readSheet(r)
		if err != nil {
			return nil, nil, err
		}
		in = sheet
	default:
		in = &csvLineReader{r: csv.NewReader(r)}
	}
	if err := gocsv.UnmarshalCSV(in, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil, nil
		}
		return nil, nil, domain.Invalidf("unable to read import file: %v", err)
	}
	return rows, in.Lines(), nil
}

type lineReader interface {
	gocsv.CSVReader
	Lines() []int
}

// csvLineReader remembers where each record started in the source.
type csvLineReader struct {
	r     *csv.Reader
	lines []int
}

func (l *csvLineReader) Read() ([]string, error) {
	rec, err := l.r.Read()
	if err != nil {
		return nil, err
	}
	line, _ := l.r.FieldPos(0)
	l.lines = append(l.lines, line)
	return rec, nil
}

func (l *csvLineReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := l.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (l *csvLineReader) Lines() []int {
	return l.lines
}

// sheetReader feeds the first worksheet of a workbook to gocsv.
type sheetReader struct {
	rows  [][]string
	lines []int
	pos   int
}

func readSheet(r io.Reader) (*sheetReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Invalidf("unable to open spreadsheet: %v", err)
	}
	sheets := f.GetSheetMap()
	if len(sheets) == 0 {
		return &sheetReader{}, nil
	}
	first := 0
	for idx := range sheets {
		if first == 0 || idx < first {
			first = idx
		}
	}
	sr := &sheetReader{}
	for i, row := range f.GetRows(sheets[first]) {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		sr.rows = append(sr.rows, row)
		sr.lines = append(sr.lines, i+1)
	}
	if len(sr.rows) == 0 {
		return sr, nil
	}
	width := len(sr.rows[0])
	for i := range sr.rows {
		for len(sr.rows[i]) < width {
			sr.rows[i] = append(sr.rows[i], "")
		}
		sr.rows[i] = sr.rows[i][:width]
	}
	return sr, nil
}

func (s *sheetReader) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *sheetReader) ReadAll() ([][]string, error) {
	rest := s.rows[s.pos:]
	s.pos = len(s.rows)
	return rest, nil
}

func (s *sheetReader) Lines() []int {
	return s.lines
}
