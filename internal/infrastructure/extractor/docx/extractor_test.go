package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Split </w:t></w:r><w:r><w:t>run</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func extract(t *testing.T, raw []byte) (string, error) {
	t.Helper()
	return NewExtractor().Extract(context.Background(), &domain.UploadedBlob{
		Filename: "letter.docx",
		Size:     int64(len(raw)),
		Content:  bytes.NewReader(raw),
	})
}

func TestExtractJoinsParagraphsInOrder(t *testing.T) {
	raw := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	})

	text, err := extract(t, raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "First paragraph\nSplit run\ttabbed\n\nLine one\nline two"
	if text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", text, want)
	}
}

func TestExtractMissingDocumentPart(t *testing.T) {
	raw := buildDocx(t, map[string]string{"[Content_Types].xml": `<Types/>`})
	_, err := extract(t, raw)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractNotAZip(t *testing.T) {
	_, err := extract(t, []byte("plain text"))
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractRejectsOversizedDocumentPart(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		strings.Repeat("a", 4096) + `</w:t></w:r></w:p></w:body></w:document>`
	raw := buildDocx(t, map[string]string{"word/document.xml": body})
	blob := func() *domain.UploadedBlob {
		return &domain.UploadedBlob{Filename: "bomb.docx", Size: int64(len(raw)), Content: bytes.NewReader(raw)}
	}

	small := &Extractor{maxPartBytes: 1024}
	_, err := small.Extract(context.Background(), blob())
	if !domain.IsKind(err, domain.ErrExtraction) || !strings.Contains(err.Error(), "DOCX") {
		t.Fatalf("expected extraction error, got %v", err)
	}

	exact := &Extractor{maxPartBytes: int64(len(body))}
	text, err := exact.Extract(context.Background(), blob())
	if err != nil || len(text) != 4096 {
		t.Fatalf("document at the cap must extract, got %d chars, err %v", len(text), err)
	}
}
