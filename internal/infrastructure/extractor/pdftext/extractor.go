package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const userMessage = "Error extracting text from PDF."

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page in page order, one page per line.
// Pages without extractable text (scans, blank pages) contribute an empty segment.
func (e *Extractor) Extract(ctx context.Context, blob *domain.UploadedBlob) (text string, err error) {
	raw, err := io.ReadAll(blob.Content)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("read pdf: %w", err), userMessage)
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.Wrap(domain.ErrExtraction, fmt.Errorf("pdf parser panic: %v", r), userMessage)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("open pdf: %w", err), userMessage)
	}

	pages := PageTexts(ctx, reader)
	return strings.Join(pages, "\n"), nil
}

// PageTexts extracts each page independently so one unreadable page does not
// abort the rest of the document.
func PageTexts(ctx context.Context, reader *pdf.Reader) []string {
	total := reader.NumPage()
	out := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		out = append(out, pageText(ctx, reader, i))
	}
	return out
}

func pageText(ctx context.Context, reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "pdf_page_unreadable", "page", num, "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		slog.WarnContext(ctx, "pdf_page_unreadable", "page", num, "error", err)
		return ""
	}
	return strings.TrimSpace(content)
}
