package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// Service produces XLSX workbooks from extracted records and configurations.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Columns returns the union of the record keys, sorted.
func Columns(records []entity.ExtractedRecord) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// RecordsXLSX writes one row per record and one column per destination key.
func (s *Service) RecordsXLSX(records []entity.ExtractedRecord) ([]byte, error) {
	start := time.Now()
	cols := Columns(records)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Registros"
	if err := useSheet(f, sheet); err != nil {
		return nil, err
	}

	if err := writeHeader(f, sheet, cols); err != nil {
		return nil, err
	}
	for i, r := range records {
		for j, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, r[c])
		}
	}
	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(c) + 4)
		if width < 14 {
			width = 14
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("records exported", "rows", len(records), "columns", len(cols), "bytes", buf.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

var layoutHeader = []string{"Registro", "Campo", "Início", "Fim", "Formato", "Destino", "Usado", "Exemplo"}

// ConfigurationXLSX documents a configuration: one row per field of every
// record layout, in record order.
func (s *Service) ConfigurationXLSX(cfg *entity.LayoutConfiguration) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Layout"
	if err := useSheet(f, sheet); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheet, layoutHeader); err != nil {
		return nil, err
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	if len(cfg.Records) > 0 {
		for _, r := range cfg.Records {
			for _, fd := range r.Fields {
				write(1, string(r.Type))
				write(2, fd.Name)
				write(3, fd.Start)
				write(4, fd.End)
				write(5, string(fd.Format))
				write(6, fd.Destination)
				write(7, fd.UsedInOutput)
				write(8, fd.Example)
				row++
			}
		}
	} else {
		for _, l := range cfg.LegacyFields {
			write(1, l.RecordType)
			write(2, l.Name)
			write(3, l.Start)
			write(4, l.End)
			write(5, string(l.Format))
			write(6, l.Destination)
			write(7, l.UsedInOutput)
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 36)
	_ = f.SetColWidth(sheet, "F", "F", 24)
	_ = f.SetColWidth(sheet, "H", "H", 28)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("configuration exported", "bank_id", cfg.BankID, "rows", row-2)
	return buf.Bytes(), nil
}

// useSheet makes sheet the active sheet, replacing the default one.
func useSheet(f *excelize.File, sheet string) error {
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return f.DeleteSheet("Sheet1")
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}
