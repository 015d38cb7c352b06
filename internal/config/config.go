package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	// ProviderOllama serves summaries only.
	ProviderOllama = "ollama"
)

type Config struct {
	APIPort  string `env:"API_PORT"  envDefault:"8080" yaml:"api_port"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`

	SummarizerProvider  string `env:"SUMMARIZER_PROVIDER"  envDefault:"gemini" yaml:"summarizer_provider"`
	TranscriberProvider string `env:"TRANSCRIBER_PROVIDER" envDefault:"gemini" yaml:"transcriber_provider"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"  yaml:"gemini_api_key"`
	GeminiModel   string `env:"GEMINI_MODEL"    envDefault:"gemini-1.5-flash" yaml:"gemini_model"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" yaml:"gemini_base_url"`

	OpenAIAPIKey             string `env:"OPENAI_API_KEY"             yaml:"openai_api_key"`
	OpenAIModel              string `env:"OPENAI_MODEL"               envDefault:"gpt-4o-mini" yaml:"openai_model"`
	OpenAITranscriptionModel string `env:"OPENAI_TRANSCRIPTION_MODEL" envDefault:"whisper-1"   yaml:"openai_transcription_model"`
	OpenAIBaseURL            string `env:"OPENAI_BASE_URL"            yaml:"openai_base_url"`

	OllamaURL   string `env:"OLLAMA_URL"   envDefault:"http://localhost:11434" yaml:"ollama_url"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3.1"               yaml:"ollama_model"`

	URLFetchTimeout   time.Duration `env:"URL_FETCH_TIMEOUT"   envDefault:"20s"      yaml:"url_fetch_timeout"`
	URLFetchMaxBytes  int64         `env:"URL_FETCH_MAX_BYTES" envDefault:"10485760" yaml:"url_fetch_max_bytes"`
	SummarizeTimeout  time.Duration `env:"SUMMARIZE_TIMEOUT"   envDefault:"120s"     yaml:"summarize_timeout"`
	TranscribeTimeout time.Duration `env:"TRANSCRIBE_TIMEOUT"  envDefault:"120s"     yaml:"transcribe_timeout"`

	APIRateLimitRPS       float64       `env:"API_RATE_LIMIT_RPS"    envDefault:"0"     yaml:"api_rate_limit_rps"`
	APIRateLimitBurst     int           `env:"API_RATE_LIMIT_BURST"  envDefault:"10"    yaml:"api_rate_limit_burst"`
	APIMaxInFlight        int           `env:"API_MAX_IN_FLIGHT"     envDefault:"32"    yaml:"api_max_in_flight"`
	APIBackpressureWait   time.Duration `env:"API_BACKPRESSURE_WAIT" envDefault:"250ms" yaml:"api_backpressure_wait"`
	LLMRetryMaxAttempts   int           `env:"LLM_RETRY_MAX_ATTEMPTS" envDefault:"1"    yaml:"llm_retry_max_attempts"`
	LLMBreakerEnabled     bool          `env:"LLM_BREAKER_ENABLED"    envDefault:"true" yaml:"llm_breaker_enabled"`
	LLMBreakerMinRequests uint32        `env:"LLM_BREAKER_MIN_REQUESTS" envDefault:"5"  yaml:"llm_breaker_min_requests"`

	MCPServerName string `env:"MCP_SERVER_NAME" envDefault:"summarizer" yaml:"mcp_server_name"`
}

// overridesOnly names a tag no field carries, so an environment pass with it
// leaves unset variables alone instead of reapplying envDefault.
const overridesOnly = "envOverrideOnly"

// Load starts from the envDefault values, overlays CONFIG_FILE (YAML) when set,
// then lets environment variables override both.
func Load() (Config, error) {
	return load(envMap(os.Environ()), os.ReadFile)
}

func load(environ map[string]string, readFile func(string) ([]byte, error)) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}

	if path := strings.TrimSpace(environ["CONFIG_FILE"]); path != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment:         environ,
		DefaultValueTagName: overridesOnly,
	}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.SummarizerProvider = strings.ToLower(strings.TrimSpace(cfg.SummarizerProvider))
	cfg.TranscriberProvider = strings.ToLower(strings.TrimSpace(cfg.TranscriberProvider))
	return cfg, nil
}

func envMap(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if ok {
			out[key] = value
		}
	}
	return out
}

// Validate checks that the selected providers have credentials and that the
// numeric limits make sense. A missing credential is fatal at startup.
func (c Config) Validate() error {
	var errs []error
	for _, p := range []struct{ role, name string }{
		{"SUMMARIZER_PROVIDER", c.SummarizerProvider},
		{"TRANSCRIBER_PROVIDER", c.TranscriberProvider},
	} {
		switch p.name {
		case ProviderGemini:
			if strings.TrimSpace(c.GeminiAPIKey) == "" {
				errs = append(errs, fmt.Errorf("%s=%s requires GEMINI_API_KEY", p.role, p.name))
			}
		case ProviderOpenAI:
			if strings.TrimSpace(c.OpenAIAPIKey) == "" {
				errs = append(errs, fmt.Errorf("%s=%s requires OPENAI_API_KEY", p.role, p.name))
			}
		case ProviderOllama:
			if p.role == "TRANSCRIBER_PROVIDER" {
				errs = append(errs, fmt.Errorf("%s=%s is not supported: ollama has no speech-to-text", p.role, p.name))
			}
		default:
			errs = append(errs, fmt.Errorf("%s must be one of %s, %s, %s; got %q", p.role, ProviderGemini, ProviderOpenAI, ProviderOllama, p.name))
		}
	}

	if c.URLFetchMaxBytes <= 0 {
		errs = append(errs, errors.New("URL_FETCH_MAX_BYTES must be positive"))
	}
	if c.URLFetchTimeout <= 0 || c.SummarizeTimeout <= 0 || c.TranscribeTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.APIRateLimitRPS > 0 && c.APIRateLimitBurst <= 0 {
		errs = append(errs, errors.New("API_RATE_LIMIT_BURST must be positive when rate limiting is enabled"))
	}
	if c.APIMaxInFlight < 0 {
		errs = append(errs, errors.New("API_MAX_IN_FLIGHT must not be negative"))
	}
	if c.LLMRetryMaxAttempts < 1 {
		errs = append(errs, errors.New("LLM_RETRY_MAX_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}
