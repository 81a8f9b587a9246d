// Package pdf renders the portfolio view as a paginated A4 document.
package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/gosimple/unidecode"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

// Page geometry in millimetres.
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 195.0
	textWidth    = 180.0
	lineHeight   = 5.0
	titleY       = 20.0
	summaryY     = 40.0
	firstEntryY  = 70.0
	pageBreakY   = 260.0
	continuedY   = 20.0
	metaOffset   = 7.0
	descOffset   = 14.0
	entrySpacing = 20.0

	titleSize   = 22.0
	summarySize = 12.0
	entrySize   = 14.0
	metaSize    = 10.0

	coreFamily = "Helvetica"
	utf8Family = "PortfolioSans"
)

type Renderer struct {
	labels  knowledge.Export
	regular []byte
	bold    []byte
}

// New loads optional TrueType fonts. Without fontPath the core Helvetica font
// is used and text is transliterated to ASCII.
func New(labels knowledge.Export, fontPath, boldFontPath string) (*Renderer, error) {
	r := &Renderer{labels: labels}
	if strings.TrimSpace(fontPath) == "" {
		return r, nil
	}

	regular, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	r.regular, r.bold = regular, regular
	if strings.TrimSpace(boldFontPath) != "" {
		if r.bold, err = os.ReadFile(boldFontPath); err != nil {
			return nil, fmt.Errorf("read pdf bold font: %w", err)
		}
	}
	return r, nil
}

func (r *Renderer) Format() domain.ExportFormat { return domain.ExportPDF }
func (r *Renderer) Extension() string           { return "pdf" }

func (r *Renderer) Render(ctx context.Context, view domain.PortfolioView, w io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreationDate(view.GeneratedAt)
	doc.SetCreator("portfolio-builder", true)

	family, text := coreFamily, transliterate
	if r.regular != nil {
		doc.AddUTF8FontFromBytes(utf8Family, "", r.regular)
		doc.AddUTF8FontFromBytes(utf8Family, "B", r.bold)
		family, text = utf8Family, func(s string) string { return s }
	}
	doc.SetTitle(text(r.title(view.StudentName)), true)
	doc.SetTextColor(40, 40, 40)
	doc.AddPage()

	doc.SetFont(family, "", titleSize)
	title := text(r.title(view.StudentName))
	doc.Text((pageWidth-doc.GetStringWidth(title))/2, titleY, title)

	doc.SetFont(family, "", summarySize)
	writeLines(doc, marginLeft, summaryY, wrap(doc, text(view.About)))

	y := firstEntryY
	for i, card := range view.Cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		if y > pageBreakY {
			doc.AddPage()
			y = continuedY
		}

		doc.SetFont(family, "B", entrySize)
		doc.Text(marginLeft, y, text(card.Title))

		doc.SetFont(family, "", metaSize)
		doc.Text(marginLeft, y+metaOffset, text(r.meta(card)))

		lines := wrap(doc, text(card.Description))
		writeLines(doc, marginLeft, y+descOffset, lines)

		if i < len(view.Cards)-1 {
			sepY := y + metaOffset + float64(len(lines))*lineHeight + 5
			doc.Line(marginLeft, sepY, marginRight, sepY)
		}
		y += entrySpacing + float64(len(lines))*lineHeight
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (r *Renderer) title(name string) string {
	return strings.ReplaceAll(r.labels.Title, "{name}", name)
}

func (r *Renderer) meta(card domain.Card) string {
	return strings.NewReplacer("{date}", card.Date, "{category}", card.CategoryName).Replace(r.labels.Meta)
}

// wrap always yields at least one line so empty descriptions still take space.
func wrap(doc *fpdf.Fpdf, s string) []string {
	lines := doc.SplitText(s, textWidth)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func writeLines(doc *fpdf.Fpdf, x, y float64, lines []string) {
	for i, line := range lines {
		doc.Text(x, y+float64(i)*lineHeight, line)
	}
}

func transliterate(s string) string {
	return unidecode.Unidecode(s)
}
