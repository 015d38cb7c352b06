package httpadapter

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const (
	multipartMemory = 32 << 20
	// multipartOverhead leaves room for form fields and boundaries around a
	// maximum size upload so the validator, not the transport, reports the size.
	multipartOverhead = 1 << 20
	jsonBodyLimit     = 2 << 20
)

type submissionPayload struct {
	InputType   string      `json:"input_type"`
	Form        string      `json:"form"`
	Length      json.Number `json:"length"`
	Language    string      `json:"language"`
	Granularity string      `json:"granularity"`
	Text        string      `json:"text"`
	URL         string      `json:"url"`
}

// decodeSubmission reads a JSON or multipart submission. The returned cleanup
// releases temporary upload files and must always be called.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (domain.SubmissionRequest, func(), error) {
	noop := func() {}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "multipart/form-data":
		return decodeMultipart(w, r)
	case "application/json", "":
		r.Body = http.MaxBytesReader(w, r.Body, jsonBodyLimit)
		var payload submissionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return domain.SubmissionRequest{}, noop, domain.Wrap(domain.ErrValidation, err, "Request body is too large.")
			}
			return domain.SubmissionRequest{}, noop, domain.Wrap(domain.ErrValidation, err, "Invalid JSON data.")
		}
		req, err := payload.toRequest()
		return req, noop, err
	default:
		return domain.SubmissionRequest{}, noop, domain.NewError(domain.ErrValidation, "Unsupported content type %s.", mediaType)
	}
}

func decodeMultipart(w http.ResponseWriter, r *http.Request) (domain.SubmissionRequest, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.SubmissionRequest{}, noop, domain.Wrap(
				domain.ErrFileTooLarge, err,
				"File is too large! Max size is %gMB.", float64(domain.MaxUploadBytes)/(1024*1024),
			)
		}
		return domain.SubmissionRequest{}, noop, domain.Wrap(domain.ErrValidation, err, "Invalid multipart form data.")
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	payload := submissionPayload{
		InputType:   r.FormValue("input_type"),
		Form:        r.FormValue("form"),
		Length:      json.Number(strings.TrimSpace(r.FormValue("length"))),
		Language:    r.FormValue("language"),
		Granularity: r.FormValue("granularity"),
		Text:        r.FormValue("text"),
		URL:         r.FormValue("url"),
	}
	req, err := payload.toRequest()
	if err != nil {
		return domain.SubmissionRequest{}, cleanup, err
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return domain.SubmissionRequest{}, cleanup, domain.Wrap(domain.ErrValidation, err, "Could not read the uploaded file.")
	default:
		req.File = &domain.UploadedBlob{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
		cleanup = func() {
			_ = file.Close()
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}
	}
	return req, cleanup, nil
}

func (p submissionPayload) toRequest() (domain.SubmissionRequest, error) {
	length, err := parseLength(p.Length)
	if err != nil {
		return domain.SubmissionRequest{}, err
	}
	return domain.SubmissionRequest{
		Kind: domain.InputKind(strings.TrimSpace(p.InputType)),
		SummaryParams: domain.SummaryParams{
			Form:        domain.OutputForm(strings.TrimSpace(p.Form)),
			Length:      length,
			Language:    strings.TrimSpace(p.Language),
			Granularity: domain.Granularity(strings.TrimSpace(p.Granularity)),
		},
		Text: p.Text,
		URL:  p.URL,
	}, nil
}

func parseLength(raw json.Number) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, domain.Wrap(domain.ErrValidation, err,
			"length must be an integer between %d and %d.", domain.MinSummaryLength, domain.MaxSummaryLength)
	}
	return n, nil
}
