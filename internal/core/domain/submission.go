package domain

import (
	"io"
	"slices"
)

const (
	// MaxUploadBytes is the upload size ceiling (50 MiB).
	MaxUploadBytes int64 = 52428800
	// MaxTextChars is the ceiling for sanitized free text, in characters.
	MaxTextChars = 4096
	// SniffBytes is how much of an upload is inspected to detect its format.
	SniffBytes = 2048

	MinSummaryLength = 1
	MaxSummaryLength = 30
)

type InputKind string

const (
	InputText InputKind = "text"
	InputFile InputKind = "file"
	InputURL  InputKind = "url"
)

type OutputForm string

const (
	FormProse  OutputForm = "text"
	FormBullet OutputForm = "bullet"
)

type Granularity string

const (
	GranularityGeneral  Granularity = "general"
	GranularityDetailed Granularity = "detailed"
)

// SourceLanguage asks for the summary in the language of the submitted text.
const SourceLanguage = "System"

var supportedLanguages = []string{
	"English",
	"French",
	"German",
	"Polish",
	"Spanish",
	"Ukrainian",
	"Arabic",
	"Bengali",
	"Bulgarian",
	"Chinese simplified and traditional",
	"Czech",
	"Croatian",
	"Dutch",
	"Danish",
	SourceLanguage,
	"Estonian",
	"Finnish",
	"Greek",
	"Hebrew",
	"Hindi",
	"Hungarian",
	"Indonesian",
	"Italian",
	"Japanese",
	"Korean",
	"Latvian",
	"Lithuanian",
	"Norwegian",
	"Portuguese",
	"Romanian",
	"Russian",
	"Serbian",
	"Slovak",
	"Slovenian",
	"Swahili",
	"Swedish",
	"Turkish",
	"Thai",
	"Vietnamese",
}

func SupportedLanguages() []string {
	return slices.Clone(supportedLanguages)
}

func IsSupportedLanguage(language string) bool {
	return slices.Contains(supportedLanguages, language)
}

func (k InputKind) Valid() bool {
	switch k {
	case InputText, InputFile, InputURL:
		return true
	default:
		return false
	}
}

func (f OutputForm) Valid() bool {
	return f == FormProse || f == FormBullet
}

func (g Granularity) Valid() bool {
	return g == GranularityGeneral || g == GranularityDetailed
}

// UploadedBlob is a client upload. Content is positioned at the start of the file.
type UploadedBlob struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// SummaryParams controls the shape of the generated summary.
type SummaryParams struct {
	Form        OutputForm
	Length      int
	Language    string
	Granularity Granularity
}

// SubmissionRequest is one client submission. Exactly one of Text, File and URL
// is expected, matching Kind.
type SubmissionRequest struct {
	Kind InputKind
	SummaryParams

	Text string
	File *UploadedBlob
	URL  string
}

type SummaryResult struct {
	Summary string `json:"summary"`
}
