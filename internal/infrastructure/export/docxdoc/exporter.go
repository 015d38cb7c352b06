package docxdoc

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	documentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentClose = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body></w:document>`

	titleRun = `<w:rPr><w:b/><w:sz w:val="32"/></w:rPr>`
)

// Exporter renders a summary as a WordprocessingML document. Word handles
// shaping and bidi itself, so any script is accepted.
type Exporter struct {
	title string
}

func NewExporter(title string) *Exporter {
	if strings.TrimSpace(title) == "" {
		title = "Summary"
	}
	return &Exporter{title: title}
}

func (e *Exporter) Format() string { return "docx" }

func (e *Exporter) Supports(string) bool { return true }

func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (e *Exporter) Filename() string { return "summary.docx" }

func (e *Exporter) Export(summary string, w io.Writer) error {
	zw := zip.NewWriter(w)
	// The document part goes first so signature sniffing sees "word/" at once.
	parts := []struct {
		name string
		body func(io.Writer) error
	}{
		{"word/document.xml", func(pw io.Writer) error { return e.writeDocument(pw, summary) }},
		{"[Content_Types].xml", constant(contentTypes)},
		{"_rels/.rels", constant(packageRels)},
	}
	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if err := part.body(pw); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("write summary docx: %w", err)
	}
	return nil
}

func constant(body string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	}
}

func (e *Exporter) writeDocument(w io.Writer, summary string) error {
	var b strings.Builder
	b.WriteString(documentOpen)
	paragraph(&b, titleRun, e.title)
	for _, line := range strings.Split(summary, "\n") {
		paragraph(&b, "", strings.TrimSpace(line))
	}
	b.WriteString(documentClose)
	_, err := io.WriteString(w, b.String())
	return err
}

// paragraph writes one w:p. Characters XML cannot carry become U+FFFD.
func paragraph(b *strings.Builder, runProps, text string) {
	b.WriteString("<w:p>")
	if text != "" {
		b.WriteString("<w:r>")
		b.WriteString(runProps)
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(text))
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
}
