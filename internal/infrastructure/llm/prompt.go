package llm

import (
	"fmt"
	"strings"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

const (
	// NoSpeechMarker is what transcription prompts ask the model to answer when
	// a recording has no recognisable speech.
	NoSpeechMarker = "NO_SPEECH"

	TranscriptionInstructions = `Transcribe the speech in this audio recording verbatim.
Return only the transcript, without timestamps, speaker labels or commentary.
If the recording contains no intelligible speech, answer with exactly ` + NoSpeechMarker + `.`
)

// SummaryInstructions describes the requested summary shape to the model.
func SummaryInstructions(params domain.SummaryParams) string {
	language := params.Language
	if language == domain.SourceLanguage || language == "" {
		language = "the same language as the text"
	}

	var shape string
	switch params.Form {
	case domain.FormBullet:
		shape = fmt.Sprintf("in form of %d bullet points with key information, each bullet starting with \"* \"", params.Length)
	default:
		shape = fmt.Sprintf("in form of a %d sentence text", params.Length)
	}

	return fmt.Sprintf(
		"Summarize the given text in %s %s, the summary should be %s. Return only the summary.",
		language, shape, params.Granularity,
	)
}

// SummaryPrompt is the single-message form used by providers without a
// separate instructions channel.
func SummaryPrompt(params domain.SummaryParams, text string) string {
	var b strings.Builder
	b.WriteString(SummaryInstructions(params))
	b.WriteString("\n\nText:\n")
	b.WriteString(text)
	return b.String()
}

// IsNoSpeech reports whether a transcript means nothing was recognised.
func IsNoSpeech(transcript string) bool {
	trimmed := strings.Trim(strings.TrimSpace(transcript), ".")
	return trimmed == "" || strings.EqualFold(trimmed, NoSpeechMarker)
}
