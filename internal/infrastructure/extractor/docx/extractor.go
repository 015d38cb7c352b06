package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const (
	documentPart  = "word/document.xml"
	wordprocessNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	userMessage   = "Error extracting text from DOCX."

	// DefaultMaxPartBytes caps the decompressed size of word/document.xml.
	DefaultMaxPartBytes = 64 << 20
)

type Extractor struct {
	maxPartBytes int64
}

func NewExtractor() *Extractor {
	return &Extractor{maxPartBytes: DefaultMaxPartBytes}
}

// Extract returns the document paragraphs in order, one paragraph per line.
func (e *Extractor) Extract(_ context.Context, blob *domain.UploadedBlob) (string, error) {
	raw, err := io.ReadAll(blob.Content)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("read docx: %w", err), userMessage)
	}

	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("open docx archive: %w", err), userMessage)
	}

	part, err := archive.Open(documentPart)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("open %s: %w", documentPart, err), userMessage)
	}
	defer part.Close()

	limited := &io.LimitedReader{R: part, N: e.maxPartBytes + 1}
	paragraphs, err := Paragraphs(limited)
	if limited.N <= 0 {
		return "", domain.Wrap(domain.ErrExtraction,
			fmt.Errorf("%s exceeds %d bytes", documentPart, e.maxPartBytes), userMessage)
	}
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, err, userMessage)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// Paragraphs streams a WordprocessingML body and returns the text of every
// top-level w:p element. Paragraphs nested in text boxes are folded into their parent.
func Paragraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int
		inText     bool
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", documentPart, err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Space != wordprocessNS {
				continue
			}
			switch el.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if el.Name.Space != wordprocessNS {
				continue
			}
			switch el.Name.Local {
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(el)
			}
		}
	}
	return paragraphs, nil
}
