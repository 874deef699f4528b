package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of generated spreadsheets.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "02/01/2006 15:04"

var xlsxHeader = []string{"Tipo", "Número", "Nombre", "Medida", "Último usuario", "Última modificación"}

// headerRow is where the table starts, below the title block.
const headerRow = 4

// XLSXGenerator renders reports locally with excelize.
type XLSXGenerator struct{}

// NewXLSXGenerator returns a local spreadsheet generator.
func NewXLSXGenerator() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate writes one sheet named after the report kind.
func (g *XLSXGenerator) Generate(_ context.Context, in Input) (*Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := in.Kind.Title()
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("locate sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	title := [][]any{
		{"Centro", in.Centro.Nombre},
		{"Provincia", in.Centro.Provincia},
		{"Generado", in.GeneratedAt.Format(dateLayout)},
	}
	for i, row := range title {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return nil, err
		}
	}

	header := make([]any, len(xlsxHeader))
	for i, h := range xlsxHeader {
		header[i] = h
	}
	header[3] = fmt.Sprintf("%s (%s)", in.Kind.Title(), in.Kind.Unit())
	if err := setRow(f, sheet, headerRow, header); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(xlsxHeader), headerRow)
	if err := f.SetCellStyle(sheet, "A4", last, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, c := range in.Cuadros {
		usuario, modificado := "", ""
		if c.UltimoUsuario != nil {
			usuario = *c.UltimoUsuario
		}
		if c.UltimaModificacion != nil {
			modificado = c.UltimaModificacion.Format(dateLayout)
		}
		row := []any{string(c.Tipo), c.Numero, c.Nombre, in.Kind.Measure(c), usuario, modificado}
		if err := setRow(f, sheet, headerRow+1+i, row); err != nil {
			return nil, err
		}
	}

	for col, width := range map[string]float64{"A": 10, "B": 10, "C": 30, "D": 18, "E": 18, "F": 20} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return &Document{
		Filename:    Filename(in.Kind, in.Centro, in.GeneratedAt, ".xlsx"),
		ContentType: ContentTypeXLSX,
		Body:        buf.Bytes(),
	}, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
