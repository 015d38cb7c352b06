package bootstrap

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"time"

	httpadapter "github.com/kirillkom/summarizer/internal/adapters/http"
	"github.com/kirillkom/summarizer/internal/config"
	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/core/ports"
	"github.com/kirillkom/summarizer/internal/core/usecase"
	"github.com/kirillkom/summarizer/internal/infrastructure/export/docxdoc"
	"github.com/kirillkom/summarizer/internal/infrastructure/export/pdfdoc"
	"github.com/kirillkom/summarizer/internal/infrastructure/extractor/audio"
	"github.com/kirillkom/summarizer/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/summarizer/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/summarizer/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/summarizer/internal/infrastructure/extractor/web"
	"github.com/kirillkom/summarizer/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/summarizer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/summarizer/internal/infrastructure/llm/openaiapi"
	"github.com/kirillkom/summarizer/internal/infrastructure/resilience"
	"github.com/kirillkom/summarizer/internal/infrastructure/sanitize"
	"github.com/kirillkom/summarizer/internal/infrastructure/upload"
	"github.com/kirillkom/summarizer/internal/observability/metrics"
)

type App struct {
	Config config.Config

	SummarizeUC ports.SubmissionSummarizer
	Exporters   []ports.SummaryExporter
	Metrics     *metrics.HTTPServerMetrics

	executors []*resilience.Executor
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	summarizeExec := resilience.NewExecutor(executorConfig(cfg, cfg.SummarizeTimeout))
	transcribeExec := resilience.NewExecutor(executorConfig(cfg, cfg.TranscribeTimeout))

	summarizer, err := newSummarizer(ctx, cfg, summarizeExec)
	if err != nil {
		return nil, fmt.Errorf("init summarizer: %w", err)
	}
	transcriber, err := newTranscriber(ctx, cfg, transcribeExec)
	if err != nil {
		return nil, fmt.Errorf("init transcriber: %w", err)
	}

	urls, err := usecase.NewURLDisambiguator()
	if err != nil {
		return nil, fmt.Errorf("init url detection: %w", err)
	}

	extractors := map[string]ports.FileExtractor{
		"txt":  plaintext.NewExtractor(),
		"pdf":  pdftext.NewExtractor(),
		"docx": docx.NewExtractor(),
		"wav":  audio.NewExtractor(transcriber),
	}
	webExtractor := web.NewExtractor(web.Config{
		Timeout:  cfg.URLFetchTimeout,
		MaxBytes: cfg.URLFetchMaxBytes,
	})

	summarizeUC := usecase.NewSummarizeUseCase(
		upload.NewValidator(domain.MaxUploadBytes),
		extractors,
		webExtractor,
		sanitize.NewSanitizer(domain.MaxTextChars),
		urls,
		summarizer,
	)

	return &App{
		Config:      cfg,
		SummarizeUC: summarizeUC,
		Exporters:   []ports.SummaryExporter{pdfdoc.NewExporter("Summary"), docxdoc.NewExporter("Summary")},
		Metrics:     metrics.NewHTTPServerMetrics("summarizer-api"),
		executors:   []*resilience.Executor{summarizeExec, transcribeExec},
	}, nil
}

// Handler builds the HTTP surface around the wired use case.
func (a *App) Handler() http.Handler {
	return httpadapter.NewRouter(a.SummarizeUC, a.Exporters, httpadapter.Options{
		RateLimitRPS:     a.Config.APIRateLimitRPS,
		RateLimitBurst:   a.Config.APIRateLimitBurst,
		MaxInFlight:      a.Config.APIMaxInFlight,
		BackpressureWait: a.Config.APIBackpressureWait,
		Metrics:          a.Metrics,
		BreakerStates:    a.BreakerStates,
	}).Handler()
}

// BreakerStates merges the breaker snapshots of every provider operation.
func (a *App) BreakerStates() map[string]string {
	out := make(map[string]string)
	for _, exec := range a.executors {
		maps.Copy(out, exec.States())
	}
	return out
}

func executorConfig(cfg config.Config, callTimeout time.Duration) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.LLMRetryMaxAttempts
	rc.BreakerEnabled = cfg.LLMBreakerEnabled
	rc.BreakerMinRequests = cfg.LLMBreakerMinRequests
	rc.CallTimeout = callTimeout
	return rc
}

func newSummarizer(ctx context.Context, cfg config.Config, exec *resilience.Executor) (ports.Summarizer, error) {
	switch cfg.SummarizerProvider {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, geminiConfig(cfg), exec)
		if err != nil {
			return nil, err
		}
		return gemini.NewSummarizer(client), nil
	case config.ProviderOpenAI:
		client, err := openaiapi.New(openAIConfig(cfg), exec)
		if err != nil {
			return nil, err
		}
		return openaiapi.NewSummarizer(client), nil
	case config.ProviderOllama:
		client := ollama.New(ollama.Config{BaseURL: cfg.OllamaURL, Model: cfg.OllamaModel}, exec)
		return ollama.NewSummarizer(client), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.SummarizerProvider)
	}
}

func newTranscriber(ctx context.Context, cfg config.Config, exec *resilience.Executor) (ports.Transcriber, error) {
	switch cfg.TranscriberProvider {
	case config.ProviderGemini:
		client, err := gemini.New(ctx, geminiConfig(cfg), exec)
		if err != nil {
			return nil, err
		}
		return gemini.NewTranscriber(client), nil
	case config.ProviderOpenAI:
		client, err := openaiapi.New(openAIConfig(cfg), exec)
		if err != nil {
			return nil, err
		}
		return openaiapi.NewTranscriber(client), nil
	default:
		return nil, fmt.Errorf("unknown transcriber provider %q", cfg.TranscriberProvider)
	}
}

func geminiConfig(cfg config.Config) gemini.Config {
	return gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	}
}

func openAIConfig(cfg config.Config) openaiapi.Config {
	return openaiapi.Config{
		APIKey:             cfg.OpenAIAPIKey,
		Model:              cfg.OpenAIModel,
		TranscriptionModel: cfg.OpenAITranscriptionModel,
		BaseURL:            cfg.OpenAIBaseURL,
	}
}
