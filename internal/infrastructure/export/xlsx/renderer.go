// Package xlsx renders the portfolio view as a single-sheet workbook.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

const (
	titleRow   = 1
	summaryRow = 2
	headerRow  = 4
)

var columnWidths = []float64{6, 40, 18, 12, 12, 80}

type Renderer struct {
	labels knowledge.Export
}

func New(labels knowledge.Export) *Renderer {
	return &Renderer{labels: labels}
}

func (r *Renderer) Format() domain.ExportFormat { return domain.ExportXLSX }
func (r *Renderer) Extension() string           { return "xlsx" }

func (r *Renderer) Render(ctx context.Context, view domain.PortfolioView, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := r.labels.Sheet
	if sheet == "" {
		sheet = "Portfolio"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   r.title(view.StudentName),
		Creator: "portfolio-builder",
		Created: view.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(r.labels.Columns))
	if err != nil {
		return fmt.Errorf("resolve last column: %w", err)
	}

	if err := r.writeHeader(f, sheet, lastCol, view, styles); err != nil {
		return err
	}
	for i, card := range view.Cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := headerRow + 1 + i
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{i + 1, card.Title, card.CategoryName, card.Date, card.Size, card.Description}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		end, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetCellStyle(sheet, cell, end, styles.wrapped); err != nil {
			return fmt.Errorf("style row %d: %w", row, err)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func (r *Renderer) writeHeader(f *excelize.File, sheet, lastCol string, view domain.PortfolioView, styles sheetStyles) error {
	title := fmt.Sprintf("A%d", titleRow)
	if err := f.SetCellValue(sheet, title, r.title(view.StudentName)); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.MergeCell(sheet, title, fmt.Sprintf("%s%d", lastCol, titleRow)); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellStyle(sheet, title, title, styles.title); err != nil {
		return fmt.Errorf("style title: %w", err)
	}

	label, about := fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow)
	if err := f.SetCellValue(sheet, label, r.labels.SummaryLabel); err != nil {
		return fmt.Errorf("write summary label: %w", err)
	}
	if err := f.SetCellValue(sheet, about, view.About); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := f.MergeCell(sheet, about, fmt.Sprintf("%s%d", lastCol, summaryRow)); err != nil {
		return fmt.Errorf("merge summary: %w", err)
	}
	if err := f.SetCellStyle(sheet, label, label, styles.header); err != nil {
		return fmt.Errorf("style summary label: %w", err)
	}
	if err := f.SetCellStyle(sheet, about, about, styles.wrapped); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	header := make([]any, len(r.labels.Columns))
	for i, c := range r.labels.Columns {
		header[i] = c
	}
	start := fmt.Sprintf("A%d", headerRow)
	if err := f.SetSheetRow(sheet, start, &header); err != nil {
		return fmt.Errorf("write column headers: %w", err)
	}
	if err := f.SetCellStyle(sheet, start, fmt.Sprintf("%s%d", lastCol, headerRow), styles.header); err != nil {
		return fmt.Errorf("style column headers: %w", err)
	}
	return nil
}

func (r *Renderer) title(name string) string {
	return strings.ReplaceAll(r.labels.Title, "{name}", name)
}

type sheetStyles struct {
	title   int
	header  int
	wrapped int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var (
		s   sheetStyles
		err error
	)
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.wrapped, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	}); err != nil {
		return s, fmt.Errorf("create cell style: %w", err)
	}
	return s, nil
}
