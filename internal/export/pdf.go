package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/sadopc/dailyschedule/internal/analytics"
)

const (
	barMaxWidth = 80.0
	rowHeight   = 7.0
)

// BreakdownPDF renders the breakdown as a one-page A4 report with a bar per
// main category and an indented line per sub-category.
func BreakdownPDF(b analytics.Breakdown, title, path string) error {
	pdf := breakdownDoc(b, title)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WriteBreakdownPDF is BreakdownPDF for an arbitrary writer.
func WriteBreakdownPDF(w io.Writer, b analytics.Breakdown, title string) error {
	pdf := breakdownDoc(b, title)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func breakdownDoc(b analytics.Breakdown, title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s to %s", b.Start.Format("Jan 2, 2006"), b.End.Format("Jan 2, 2006 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %s in %d sessions", analytics.FormatMinutes(b.TotalMinutes), b.TotalSessions))
	pdf.Ln(10)

	visible := b.Visible()
	if len(visible) == 0 {
		pdf.SetFont("Arial", "I", 12)
		pdf.Cell(0, 8, "No time tracked in this period.")
		return pdf
	}

	for _, m := range visible {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(70, rowHeight, tr(m.Category.Name), "", 0, "L", false, 0, "")

		r, g, bl := hexRGB(m.Category.Color)
		pdf.SetFillColor(r, g, bl)
		w := barMaxWidth * float64(m.Percent) / 100
		if w > 0 {
			pdf.Rect(pdf.GetX(), pdf.GetY()+1.5, w, rowHeight-3, "F")
		}
		pdf.SetX(pdf.GetX() + barMaxWidth + 2)
		pdf.CellFormat(0, rowHeight, fmt.Sprintf("%s  %d%%", analytics.FormatMinutes(m.Minutes), m.Percent), "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, s := range m.Subs {
			pdf.CellFormat(8, 6, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(62, 6, tr(s.Category.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, fmt.Sprintf("%s  %d%%  (%d sessions)", analytics.FormatMinutes(s.Minutes), s.Percent, s.Sessions), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if b.UnattributedSessions > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Deleted categories: %s in %d sessions",
			analytics.FormatMinutes(b.UnattributedMinutes), b.UnattributedSessions))
	}
	return pdf
}

// hexRGB parses "#RRGGBB", falling back to a neutral grey.
func hexRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
