package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrFileTooLarge             = errors.New("file too large")
	ErrUnsupportedExtension     = errors.New("unsupported file extension")
	ErrMimeMismatch             = errors.New("mime type mismatch")
	ErrExtraction               = errors.New("text extraction failed")
	ErrFetch                    = errors.New("url fetch failed")
	ErrAudioUnintelligible      = errors.New("audio unintelligible")
	ErrTranscriptionUnavailable = errors.New("transcription service unavailable")
	ErrTextTooLong              = errors.New("text too long")
	ErrEmptyInput               = errors.New("empty input")
	ErrSummarization            = errors.New("summarization failed")
	ErrTemporary                = errors.New("temporary failure")
)

// Error is a classified failure with a message that is safe to show to the client.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds a classified error without an underlying cause.
func NewError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies cause under kind and attaches a client-facing message.
func Wrap(kind error, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UserMessage returns the client-facing text of err. Unclassified errors get a
// generic message so internal details are not leaked.
func UserMessage(err error) string {
	var classified *Error
	if errors.As(err, &classified) && classified.Message != "" {
		return classified.Message
	}
	return "An unexpected error occurred."
}

// FetchStatusError reports a non-2xx response from a remote page.
type FetchStatusError struct {
	URL        string
	StatusCode int
}

func (e *FetchStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
