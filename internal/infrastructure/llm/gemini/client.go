package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/infrastructure/llm"
	"github.com/kirillkom/summarizer/internal/infrastructure/resilience"
)

const (
	DefaultModel = "gemini-1.5-flash"

	summarizeOperation  = "gemini.summarize"
	transcribeOperation = "gemini.transcribe"
	audioMIMEType       = "audio/wav"
)

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the public endpoint. Empty means the SDK default.
	BaseURL string
}

// Client wraps the Gemini models API with the provider-specific error
// classification. Summarizer and Transcriber share one Client.
type Client struct {
	models   generator
	model    string
	exec     *resilience.Executor
	classify resilience.ErrorClassifier
}

func New(ctx context.Context, cfg Config, exec *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newClient(client.Models, cfg.Model, exec), nil
}

func newClient(models generator, model string, exec *resilience.Executor) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		models:   models,
		model:    model,
		exec:     exec,
		classify: llm.Classifier(statusCode),
	}
}

func (c *Client) generate(ctx context.Context, operation string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	return resilience.Call(ctx, c.exec, operation, func(ctx context.Context) (string, error) {
		resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return "", err
		}
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
		}
		return resp.Text(), nil
	}, c.classify)
}

// BlockedError is returned when the model refuses the prompt.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "gemini: prompt blocked: " + e.Reason
}

func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return apiErr.Code, true
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
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(llm.SummaryInstructions(params), genai.RoleUser),
	}
	raw, err := s.client.generate(ctx, summarizeOperation, genai.Text(text), config)
	if err != nil {
		slog.ErrorContext(ctx, "gemini_summarize_failed", "model", s.client.model, "error", err)
		var blocked *BlockedError
		if errors.As(err, &blocked) {
			return "", domain.Wrap(domain.ErrSummarization, err, "The text could not be summarized because it was blocked by the model's safety filters.")
		}
		return "", domain.Wrap(domain.ErrSummarization, llm.WrapTemporary("gemini summarize", err, s.client.classify), "Error generating summary.")
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
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(llm.TranscriptionInstructions),
			genai.NewPartFromBytes(audio, audioMIMEType),
		}, genai.RoleUser),
	}

	transcript, err := t.client.generate(ctx, transcribeOperation, contents, nil)
	if err != nil {
		slog.WarnContext(ctx, "gemini_transcribe_failed", "model", t.client.model, "error", err)
		if code, ok := statusCode(err); ok && code == http.StatusBadRequest {
			return "", domain.Wrap(domain.ErrAudioUnintelligible, err, "The audio could not be understood.")
		}
		return "", domain.Wrap(
			domain.ErrTranscriptionUnavailable,
			llm.WrapTemporary("gemini transcribe", err, t.client.classify),
			"The speech recognition service is unavailable. Please try again later.",
		)
	}

	if llm.IsNoSpeech(transcript) {
		return "", domain.NewError(domain.ErrAudioUnintelligible, "The audio could not be understood.")
	}
	return strings.TrimSpace(transcript), nil
}
