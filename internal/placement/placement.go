// Package placement reads and writes the field-placement table used to set
// up slip templates: name,variable,type,x,y,width,height,alignment,fontSize.
package placement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// Header is the column order of the exchange table.
var Header = []string{"name", "variable", "type", "x", "y", "width", "height", "alignment", "fontSize"}

// Field types besides the value formats.
const (
	TypeText      = "text"
	TypeBarcode   = "barcode"
	TypeDigitable = "digitable"
)

// Decode parses a placement table, as XLSX when data carries a zip header
// and as CSV otherwise.
func Decode(data []byte) ([]entity.TemplateField, error) {
	if isXLSX(data) {
		return DecodeXLSX(data)
	}
	return DecodeCSV(data)
}

func isXLSX(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// DecodeCSV parses a comma or semicolon separated placement table.
func DecodeCSV(data []byte) ([]entity.TemplateField, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if first, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		reader.Comma = ';'
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("read csv row: %v", err)
		}
		rows = append(rows, row)
	}
	return decodeRows(rows)
}

// DecodeXLSX parses the first sheet of a workbook.
func DecodeXLSX(data []byte) ([]entity.TemplateField, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, invalid("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, invalid("read rows: %v", err)
	}
	return decodeRows(rows)
}

func decodeRows(rows [][]string) ([]entity.TemplateField, error) {
	if len(rows) == 0 {
		return nil, invalid("missing header row")
	}
	index := make(map[string]int, len(Header))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range []string{"name", "x", "y", "width", "height"} {
		if _, ok := index[strings.ToLower(h)]; !ok {
			return nil, invalid("missing column %q", h)
		}
	}

	fields := make([]entity.TemplateField, 0, len(rows)-1)
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := index[strings.ToLower(name)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if isBlank(row) {
			continue
		}
		f, err := decodeRow(cell)
		if err != nil {
			return nil, invalid("row %d: %v", n+2, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func decodeRow(cell func(string) string) (entity.TemplateField, error) {
	f := entity.TemplateField{
		Key:       cell("name"),
		Source:    cell("variable"),
		Page:      1,
		Alignment: strings.ToLower(cell("alignment")),
	}
	if f.Key == "" {
		return f, errors.New("name is required")
	}

	var err error
	for _, n := range []struct {
		col string
		dst *float64
	}{
		{"x", &f.X}, {"y", &f.Y}, {"width", &f.Width}, {"height", &f.Height}, {"fontSize", &f.FontSize},
	} {
		if *n.dst, err = number(cell(n.col)); err != nil {
			return f, fmt.Errorf("%s: %w", n.col, err)
		}
	}
	if f.Width < 0 || f.Height < 0 {
		return f, errors.New("width and height must not be negative")
	}

	switch t := strings.ToLower(cell("type")); t {
	case "", TypeText:
	case TypeBarcode:
		f.IsBarcode = true
	case TypeDigitable:
		f.IsDigitable = true
	default:
		f.Format = constants.ValueFormat(t)
	}
	return f, nil
}

// number parses a decimal with either "." or "," as separator. Empty is zero.
func number(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func invalid(format string, args ...any) error {
	return common.NewAppError("INVALID_PLACEMENT", fmt.Sprintf(format, args...), common.ErrInvalidInput)
}

func typeOf(f entity.TemplateField) string {
	switch {
	case f.IsBarcode:
		return TypeBarcode
	case f.IsDigitable:
		return TypeDigitable
	case f.Format != "":
		return string(f.Format)
	}
	return TypeText
}

func rowOf(f entity.TemplateField) []string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{f.Key, f.Source, typeOf(f), num(f.X), num(f.Y), num(f.Width), num(f.Height), f.Alignment, num(f.FontSize)}
}

// EncodeCSV writes fields as a placement table.
func EncodeCSV(fields []entity.TemplateField) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range fields {
		if err := w.Write(rowOf(f)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// EncodeXLSX writes fields to a single-sheet workbook with a bold header.
func EncodeXLSX(fields []entity.TemplateField) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Sheet1"

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
	for r, field := range fields {
		for c, v := range rowOf(field) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "C", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
