package pdfdoc

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "DejaVu"
	fontSize   = 12
	lineHeight = 6
)

//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuSans []byte

// ErrUnsupportedScript is returned for text the embedded font cannot lay out.
var ErrUnsupportedScript = errors.New("summary uses a script the pdf font cannot render")

// scripts covers left-to-right alphabets with glyphs in DejaVu Sans. Hebrew and
// Arabic have glyphs too but gofpdf does no bidi reordering or shaping.
var scripts = []*unicode.RangeTable{unicode.Latin, unicode.Cyrillic, unicode.Greek}

// Exporter renders a summary as a single A4 PDF document.
type Exporter struct {
	title string
}

func NewExporter(title string) *Exporter {
	if strings.TrimSpace(title) == "" {
		title = "Summary"
	}
	return &Exporter{title: title}
}

func (e *Exporter) Format() string { return "pdf" }

func (e *Exporter) ContentType() string { return "application/pdf" }

func (e *Exporter) Filename() string { return "summary.pdf" }

// Supports reports whether every letter of the title and summary has a glyph.
func (e *Exporter) Supports(summary string) bool {
	return renderable(e.title) && renderable(summary)
}

func renderable(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) && !unicode.IsOneOf(scripts, r) {
			return false
		}
	}
	return true
}

func (e *Exporter) Export(summary string, w io.Writer) error {
	if !e.Supports(summary) {
		return ErrUnsupportedScript
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(e.title, true)
	doc.SetCreator("summarizer", true)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddUTF8FontFromBytes(fontFamily, "", dejaVuSans)
	doc.AddPage()

	doc.SetFont(fontFamily, "", fontSize+4)
	doc.CellFormat(0, lineHeight*2, e.title, "", 1, "L", false, 0, "")
	doc.Ln(lineHeight / 2)

	doc.SetFont(fontFamily, "", fontSize)
	for _, line := range strings.Split(summary, "\n") {
		doc.MultiCell(0, lineHeight, strings.TrimSpace(line), "", "L", false)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("render summary pdf: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write summary pdf: %w", err)
	}
	return nil
}
