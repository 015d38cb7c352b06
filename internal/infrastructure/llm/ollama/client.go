package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/infrastructure/llm"
	"github.com/kirillkom/summarizer/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1"

	summarizeOperation = "ollama.summarize"
)

type Config struct {
	BaseURL string
	Model   string
}

// Client talks to a self-hosted Ollama server. Only summarization is
// offered; Ollama has no speech-to-text endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
	classify   resilience.ErrorClassifier
}

func New(cfg Config, exec *resilience.Executor) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{},
		exec:       exec,
		classify:   llm.Classifier(statusCode),
	}
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
		return c.generate(ctx, llm.SummaryPrompt(params, text))
	}, c.classify)
	if err != nil {
		slog.ErrorContext(ctx, "ollama_summarize_failed", "model", c.model, "error", err)
		return "", domain.Wrap(domain.ErrSummarization, llm.WrapTemporary("ollama summarize", err, c.classify), "Error generating summary.")
	}

	summary := domain.NormalizeSummary(params.Form, raw)
	if summary == "" {
		return "", domain.NewError(domain.ErrSummarization, "Error generating summary.")
	}
	return summary, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
