package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/core/ports"
)

const (
	unintelligibleMessage = "The audio could not be understood."
	unavailableMessage    = "The speech recognition service is unavailable. Please try again later."
)

// Extractor turns a WAV upload into text by sending the whole recording to a
// speech-to-text collaborator in one call.
type Extractor struct {
	transcriber ports.Transcriber
}

func NewExtractor(transcriber ports.Transcriber) *Extractor {
	return &Extractor{transcriber: transcriber}
}

func (e *Extractor) Extract(ctx context.Context, blob *domain.UploadedBlob) (string, error) {
	audio, err := io.ReadAll(blob.Content)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, fmt.Errorf("read wav: %w", err), "Error reading WAV file.")
	}

	transcript, err := e.transcriber.Transcribe(ctx, audio)
	if err != nil {
		if domain.IsKind(err, domain.ErrAudioUnintelligible) || domain.IsKind(err, domain.ErrTranscriptionUnavailable) {
			return "", err
		}
		slog.WarnContext(ctx, "transcription_failed", "filename", blob.Filename, "error", err)
		return "", domain.Wrap(domain.ErrTranscriptionUnavailable, err, unavailableMessage)
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", domain.NewError(domain.ErrAudioUnintelligible, unintelligibleMessage)
	}
	return transcript, nil
}
