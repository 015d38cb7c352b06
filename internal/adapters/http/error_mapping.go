package httpadapter

import (
	"net/http"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const unexpectedErrorMessage = "An unexpected error occurred."

// clientFaults are rejected with 400: the submission or its source was unusable.
var clientFaults = []struct {
	kind    error
	outcome string
}{
	{domain.ErrValidation, "validation"},
	{domain.ErrFileTooLarge, "file_too_large"},
	{domain.ErrUnsupportedExtension, "unsupported_extension"},
	{domain.ErrMimeMismatch, "mime_mismatch"},
	{domain.ErrExtraction, "extraction"},
	{domain.ErrFetch, "fetch"},
	{domain.ErrAudioUnintelligible, "audio_unintelligible"},
	{domain.ErrTranscriptionUnavailable, "transcription_unavailable"},
	{domain.ErrTextTooLong, "text_too_long"},
	{domain.ErrEmptyInput, "empty_input"},
}

func mapErrorToHTTPStatus(err error) int {
	for _, fault := range clientFaults {
		if domain.IsKind(err, fault.kind) {
			return http.StatusBadRequest
		}
	}
	switch {
	case domain.IsKind(err, domain.ErrSummarization):
		return http.StatusInternalServerError
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// outcomeLabel names the failure class for metrics.
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, fault := range clientFaults {
		if domain.IsKind(err, fault.kind) {
			return fault.outcome
		}
	}
	if domain.IsKind(err, domain.ErrSummarization) {
		return "summarization"
	}
	return "internal"
}
