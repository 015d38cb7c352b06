package ports

import (
	"context"
	"io"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

// Summarizer is the external generative-model collaborator.
type Summarizer interface {
	Summarize(ctx context.Context, params domain.SummaryParams, text string) (string, error)
}

// Transcriber converts a complete WAV recording to text in one pass.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// UploadValidator rejects oversized, unsupported or spoofed uploads.
type UploadValidator interface {
	Validate(blob *domain.UploadedBlob) (extension string, err error)
}

// FileExtractor extracts plain text from one upload format.
type FileExtractor interface {
	Extract(ctx context.Context, blob *domain.UploadedBlob) (string, error)
}

// URLExtractor fetches a remote page and returns its visible text.
type URLExtractor interface {
	ExtractURL(ctx context.Context, rawURL string) (string, error)
}

// TextSanitizer strips disallowed markup and enforces the text ceiling.
type TextSanitizer interface {
	Sanitize(text string) (string, error)
}

// SummaryExporter renders a finished summary as a downloadable document.
// Supports reports whether the format can represent every character of summary.
type SummaryExporter interface {
	Format() string
	Supports(summary string) bool
	ContentType() string
	Filename() string
	Export(summary string, w io.Writer) error
}
