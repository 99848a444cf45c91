package grid

import (
	"fmt"

	"github.com/signintech/gopdf"
	"github.com/stemsi/exscan-backend/internal/model"
)

const (
	pageMargin  = 40.0
	cellSize    = 24.0
	rowLabelW   = 30.0
	lineHeight  = 16.0
	fontName    = "sheet"
	listingSize = 11
	gridSize    = 12
)

// SheetRenderer renders printable answer sheets. It is stateless apart from
// the font path and safe to use from concurrent requests; every call builds
// its own document.
type SheetRenderer struct {
	fontPath string
}

// NewSheetRenderer creates a SheetRenderer reading the TTF at fontPath on
// every render. gopdf ships no built-in fonts, so a missing font file makes
// Render fail rather than the constructor.
func NewSheetRenderer(fontPath string) *SheetRenderer {
	return &SheetRenderer{fontPath: fontPath}
}

// Render produces the answer sheet PDF for a test: a human-readable listing
// of every question with its lettered options, followed by the markable
// answer grid. The listing is reference material only; grading reads the
// grid. Returns the document bytes without persisting anything.
func (r *SheetRenderer) Render(test *model.TestDetail) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFont(fontName, r.fontPath); err != nil {
		return nil, fmt.Errorf("load sheet font %s: %w", r.fontPath, err)
	}
	if err := pdf.SetFont(fontName, "", listingSize); err != nil {
		return nil, fmt.Errorf("set font: %w", err)
	}

	pdf.AddPage()
	pdf.SetXY(pageMargin, pageMargin)

	if err := r.writeListing(&pdf, test); err != nil {
		return nil, err
	}

	pdf.AddPage()
	if err := pdf.SetFont(fontName, "", gridSize); err != nil {
		return nil, fmt.Errorf("set font: %w", err)
	}
	layout := Compute(test.Questions)
	if err := r.drawGrid(&pdf, layout); err != nil {
		return nil, err
	}

	return pdf.GetBytesPdf(), nil
}

// writeListing prints each question's content followed by its answers in
// position order, labelled a), b), c)...
func (r *SheetRenderer) writeListing(pdf *gopdf.GoPdf, test *model.TestDetail) error {
	pageWidth, pageHeight := gopdf.PageSizeA4.W, gopdf.PageSizeA4.H
	textWidth := pageWidth - 2*pageMargin

	writeLine := func(indent float64, text string) error {
		lines, err := pdf.SplitText(text, textWidth-indent)
		if err != nil {
			return fmt.Errorf("split text: %w", err)
		}
		for _, line := range lines {
			if pdf.GetY()+lineHeight > pageHeight-pageMargin {
				pdf.AddPage()
				pdf.SetXY(pageMargin, pageMargin)
			}
			pdf.SetX(pageMargin + indent)
			if err := pdf.Cell(nil, line); err != nil {
				return fmt.Errorf("write listing line: %w", err)
			}
			pdf.Br(lineHeight)
		}
		return nil
	}

	if err := writeLine(0, test.Name); err != nil {
		return err
	}
	pdf.Br(lineHeight)

	for i, q := range test.Questions {
		if err := writeLine(0, fmt.Sprintf("%s. %s", RowLabel(i), q.Content)); err != nil {
			return err
		}
		for j, a := range q.Answers {
			if err := writeLine(lineHeight, fmt.Sprintf("%s) %s", OptionLetter(j), a.Content)); err != nil {
				return err
			}
		}
		pdf.Br(lineHeight / 2)
	}
	return nil
}

// drawGrid draws the markable grid: a header row of uppercase column letters
// and one numbered row of empty boxes per question. Degenerate layouts (zero
// rows or columns) produce an empty grid page.
func (r *SheetRenderer) drawGrid(pdf *gopdf.GoPdf, layout Layout) error {
	pageWidth, pageHeight := gopdf.PageSizeA4.W, gopdf.PageSizeA4.H

	cellW := cellSize
	if layout.Columns > 0 {
		if max := (pageWidth - 2*pageMargin - rowLabelW) / float64(layout.Columns); max < cellW {
			cellW = max
		}
	}

	boxed := gopdf.CellOption{
		Align:  gopdf.Center | gopdf.Middle,
		Border: gopdf.AllBorders,
	}
	cell := func(w float64, text string) error {
		if err := pdf.CellWithOption(&gopdf.Rect{W: w, H: cellSize}, text, boxed); err != nil {
			return fmt.Errorf("draw grid cell: %w", err)
		}
		return nil
	}

	header := func() error {
		pdf.SetX(pageMargin)
		if err := cell(rowLabelW, ""); err != nil {
			return err
		}
		for col := 0; col < layout.Columns; col++ {
			if err := cell(cellW, ColumnLetter(col)); err != nil {
				return err
			}
		}
		pdf.Br(cellSize)
		return nil
	}

	pdf.SetXY(pageMargin, pageMargin)
	if err := header(); err != nil {
		return err
	}

	for row := 0; row < layout.Rows; row++ {
		if pdf.GetY()+cellSize > pageHeight-pageMargin {
			pdf.AddPage()
			pdf.SetXY(pageMargin, pageMargin)
			if err := header(); err != nil {
				return err
			}
		}
		pdf.SetX(pageMargin)
		if err := cell(rowLabelW, RowLabel(row)); err != nil {
			return err
		}
		for col := 0; col < layout.Columns; col++ {
			if err := cell(cellW, ""); err != nil {
				return err
			}
		}
		pdf.Br(cellSize)
	}
	return nil
}
