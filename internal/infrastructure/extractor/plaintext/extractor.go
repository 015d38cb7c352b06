package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, blob *domain.UploadedBlob) (string, error) {
	raw, err := io.ReadAll(blob.Content)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("read source document: %w", err), "Error reading TXT file.")
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("invalid utf-8 in %s", blob.Filename), "Error reading TXT file: the file is not valid UTF-8 text.")
	}
	return string(raw), nil
}
