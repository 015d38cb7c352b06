package openaiapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/infrastructure/llm"
	"github.com/kirillkom/summarizer/internal/infrastructure/resilience"
)

const (
	DefaultModel              = "gpt-4o-mini"
	DefaultTranscriptionModel = "whisper-1"

	maxOutputTokens int64 = 2048

	summarizeOperation  = "openai.summarize"
	transcribeOperation = "openai.transcribe"
)

type Config struct {
	APIKey             string
	Model              string
	TranscriptionModel string
	BaseURL            string
}

// Client holds one SDK client shared by the summarizer and the transcriber.
// SDK-level retries are disabled so the resilience executor owns that policy.
type Client struct {
	api                openai.Client
	model              string
	transcriptionModel string
	exec               *resilience.Executor
	classify           resilience.ErrorClassifier
}

func New(cfg Config, exec *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.TranscriptionModel) == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		api:                openai.NewClient(opts...),
		model:              cfg.Model,
		transcriptionModel: cfg.TranscriptionModel,
		exec:               exec,
		classify:           llm.Classifier(statusCode),
	}, nil
}

func statusCode(err error) (int, bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode, true
	}
	return 0, false
}

type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, params domain.SummaryParams, text string) (string, error) {
	c := s.client
	raw, err := resilience.Call(ctx, c.exec, summarizeOperation, func(ctx context.Context) (string, error) {
		resp, err := c.api.Responses.New(ctx, responses.ResponseNewParams{
			Model:           openai.ChatModel(c.model),
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Instructions:    openai.String(llm.SummaryInstructions(params)),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}
		if resp.Status == "incomplete" {
			return "", fmt.Errorf("response is incomplete (reason = %s)", resp.IncompleteDetails.Reason)
		}
		return resp.OutputText(), nil
	}, c.classify)
	if err != nil {
		slog.ErrorContext(ctx, "openai_summarize_failed", "model", c.model, "error", err)
		return "", domain.Wrap(domain.ErrSummarization, llm.WrapTemporary("openai summarize", err, c.classify), "Error generating summary.")
	}

	summary := domain.NormalizeSummary(params.Form, raw)
	if summary == "" {
		return "", domain.NewError(domain.ErrSummarization, "Error generating summary.")
	}
	return summary, nil
}

type Transcriber struct {
	client *Client
}

func NewTranscriber(client *Client) *Transcriber {
	return &Transcriber{client: client}
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	c := t.client
	transcript, err := resilience.Call(ctx, c.exec, transcribeOperation, func(ctx context.Context) (string, error) {
		resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
			File:  openai.File(bytes.NewReader(audio), "audio.wav", "audio/wav"),
			Model: openai.AudioModel(c.transcriptionModel),
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}
		return resp.Text, nil
	}, c.classify)
	if err != nil {
		slog.WarnContext(ctx, "openai_transcribe_failed", "model", c.transcriptionModel, "error", err)
		if code, ok := statusCode(err); ok && code == http.StatusBadRequest {
			return "", domain.Wrap(domain.ErrAudioUnintelligible, err, "The audio could not be understood.")
		}
		return "", domain.Wrap(
			domain.ErrTranscriptionUnavailable,
			llm.WrapTemporary("openai transcribe", err, c.classify),
			"The speech recognition service is unavailable. Please try again later.",
		)
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", domain.NewError(domain.ErrAudioUnintelligible, "The audio could not be understood.")
	}
	return transcript, nil
}
