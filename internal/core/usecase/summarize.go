package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/core/ports"
)

type SummarizeUseCase struct {
	validator  ports.UploadValidator
	extractors map[string]ports.FileExtractor
	web        ports.URLExtractor
	sanitizer  ports.TextSanitizer
	urls       *URLDisambiguator
	summarizer ports.Summarizer
}

func NewSummarizeUseCase(
	validator ports.UploadValidator,
	extractors map[string]ports.FileExtractor,
	web ports.URLExtractor,
	sanitizer ports.TextSanitizer,
	urls *URLDisambiguator,
	summarizer ports.Summarizer,
) *SummarizeUseCase {
	return &SummarizeUseCase{
		validator:  validator,
		extractors: extractors,
		web:        web,
		sanitizer:  sanitizer,
		urls:       urls,
		summarizer: summarizer,
	}
}

func (uc *SummarizeUseCase) Summarize(ctx context.Context, req domain.SubmissionRequest) (result domain.SummaryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "summarize_panic", "input_kind", req.Kind, "panic", fmt.Sprint(r))
			result = domain.SummaryResult{}
			err = fmt.Errorf("summarize panic: %v", r)
		}
	}()

	if err := ValidateSubmission(req); err != nil {
		return domain.SummaryResult{}, err
	}

	text, err := uc.extract(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "extraction_failed", "input_kind", req.Kind, "error", err)
		return domain.SummaryResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return domain.SummaryResult{}, domain.NewError(domain.ErrEmptyInput, "No valid text found.")
	}

	summary, err := uc.summarizer.Summarize(ctx, req.SummaryParams, text)
	if err != nil {
		slog.ErrorContext(ctx, "summarization_failed", "input_kind", req.Kind, "error", err)
		if domain.IsKind(err, domain.ErrSummarization) {
			return domain.SummaryResult{}, err
		}
		return domain.SummaryResult{}, domain.Wrap(domain.ErrSummarization, err, "Error generating summary.")
	}

	return domain.SummaryResult{Summary: summary}, nil
}

func (uc *SummarizeUseCase) extract(ctx context.Context, req domain.SubmissionRequest) (string, error) {
	switch req.Kind {
	case domain.InputText:
		if link, ok := uc.urls.Detect(req.Text); ok {
			slog.DebugContext(ctx, "text_submission_is_url", "url", link)
			return uc.web.ExtractURL(ctx, link)
		}
		return uc.sanitizer.Sanitize(req.Text)
	case domain.InputFile:
		ext, err := uc.validator.Validate(req.File)
		if err != nil {
			return "", err
		}
		extractor, ok := uc.extractors[ext]
		if !ok {
			return "", domain.NewError(domain.ErrUnsupportedExtension, "File extension %s is not supported.", ext)
		}
		return extractor.Extract(ctx, req.File)
	case domain.InputURL:
		return uc.web.ExtractURL(ctx, strings.TrimSpace(req.URL))
	default:
		return "", domain.NewError(domain.ErrValidation, "input_type must be one of text, file, url.")
	}
}

// ValidateSubmission checks the shape of req before any extraction work happens.
func ValidateSubmission(req domain.SubmissionRequest) error {
	if !req.Kind.Valid() {
		return domain.NewError(domain.ErrValidation, "input_type must be one of text, file, url.")
	}
	if !req.Form.Valid() {
		return domain.NewError(domain.ErrValidation, "form must be one of text, bullet.")
	}
	if req.Length < domain.MinSummaryLength || req.Length > domain.MaxSummaryLength {
		return domain.NewError(domain.ErrValidation, "length must be between %d and %d.", domain.MinSummaryLength, domain.MaxSummaryLength)
	}
	if !domain.IsSupportedLanguage(req.Language) {
		return domain.NewError(domain.ErrValidation, "language %q is not supported.", req.Language)
	}
	if !req.Granularity.Valid() {
		return domain.NewError(domain.ErrValidation, "granularity must be one of detailed, general.")
	}

	hasText := strings.TrimSpace(req.Text) != ""
	hasFile := req.File != nil && req.File.Content != nil
	hasURL := strings.TrimSpace(req.URL) != ""

	switch req.Kind {
	case domain.InputText:
		if !hasText {
			return domain.NewError(domain.ErrValidation, "Text input is required when 'input_type' is 'text'.")
		}
		if hasFile || hasURL {
			return domain.NewError(domain.ErrValidation, "Only the 'text' field may be provided when 'input_type' is 'text'.")
		}
	case domain.InputFile:
		if !hasFile {
			return domain.NewError(domain.ErrValidation, "A file must be uploaded when 'input_type' is 'file'.")
		}
		if hasText || hasURL {
			return domain.NewError(domain.ErrValidation, "Only the 'file' field may be provided when 'input_type' is 'file'.")
		}
	case domain.InputURL:
		if !hasURL {
			return domain.NewError(domain.ErrValidation, "A valid URL is required when 'input_type' is 'url'.")
		}
		if hasText || hasFile {
			return domain.NewError(domain.ErrValidation, "Only the 'url' field may be provided when 'input_type' is 'url'.")
		}
		if !isHTTPURL(strings.TrimSpace(req.URL)) {
			return domain.NewError(domain.ErrValidation, "A valid URL is required when 'input_type' is 'url'.")
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
