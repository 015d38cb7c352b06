package upload

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

// AllowedMIMETypes maps every supported extension to the signature it must carry.
var AllowedMIMETypes = map[string]string{
	"txt":  "text/plain",
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"wav":  "audio/x-wav",
}

type Validator struct {
	maxBytes int64
}

func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = domain.MaxUploadBytes
	}
	return &Validator{maxBytes: maxBytes}
}

// Validate checks size, extension and binary signature, in that order, and
// returns the normalized extension. The content position is left unchanged.
func (v *Validator) Validate(blob *domain.UploadedBlob) (string, error) {
	if blob == nil || blob.Content == nil {
		return "", domain.NewError(domain.ErrValidation, "A file must be uploaded when 'input_type' is 'file'.")
	}

	if blob.Size > v.maxBytes {
		return "", domain.NewError(domain.ErrFileTooLarge, "File is too large! Max size is %gMB.", float64(v.maxBytes)/(1024*1024))
	}

	ext := Extension(blob.Filename)
	expected, ok := AllowedMIMETypes[ext]
	if !ok {
		return "", domain.NewError(domain.ErrUnsupportedExtension, "File extension %s is not supported.", ext)
	}

	detected, err := sniff(blob.Content)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, err, "Could not read the uploaded file.")
	}
	if !detected.Is(expected) {
		return "", domain.NewError(domain.ErrMimeMismatch, "Invalid file format. Expected %s, but got %s.", expected, detected.String())
	}
	return ext, nil
}

// Extension returns the lower-cased suffix after the last dot, or "" when the
// name has none.
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

func sniff(rs io.ReadSeeker) (*mimetype.MIME, error) {
	var detected *mimetype.MIME
	err := withRewind(rs, func() error {
		head := make([]byte, domain.SniffBytes)
		n, err := io.ReadFull(rs, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read file header: %w", err)
		}
		detected = mimetype.Detect(head[:n])
		return nil
	})
	return detected, err
}

// withRewind runs fn and restores the read position of rs on every exit path,
// including panics inside fn.
func withRewind(rs io.ReadSeeker, fn func() error) (err error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get read position: %w", err)
	}
	defer func() {
		if _, seekErr := rs.Seek(start, io.SeekStart); seekErr != nil && err == nil {
			err = fmt.Errorf("restore read position: %w", seekErr)
		}
	}()
	return fn()
}
