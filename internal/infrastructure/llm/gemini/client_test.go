package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/infrastructure/resilience"
)

type generatorFake struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	calls    int
}

func (f *generatorFake) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

func params(form domain.OutputForm) domain.SummaryParams {
	return domain.SummaryParams{Form: form, Length: 3, Language: "English", Granularity: domain.GranularityGeneral}
}

func TestSummarizeNormalizesBulletOutput(t *testing.T) {
	fake := &generatorFake{resp: textResponse("* first   point\n\n* second point")}
	s := NewSummarizer(newClient(fake, "", nil))

	got, err := s.Summarize(context.Background(), params(domain.FormBullet), "source text")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "* first point\n* second point" {
		t.Fatalf("unexpected summary %q", got)
	}
	if fake.model != DefaultModel {
		t.Fatalf("expected default model, got %q", fake.model)
	}
	if fake.config == nil || fake.config.SystemInstruction == nil {
		t.Fatalf("expected system instruction to be set")
	}
	if !strings.Contains(fake.config.SystemInstruction.Parts[0].Text, "3 bullet points") {
		t.Fatalf("unexpected instruction %q", fake.config.SystemInstruction.Parts[0].Text)
	}
	if len(fake.contents) != 1 || fake.contents[0].Parts[0].Text != "source text" {
		t.Fatalf("expected source text as the user content")
	}
}

func TestSummarizeProviderFailure(t *testing.T) {
	fake := &generatorFake{err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}}
	s := NewSummarizer(newClient(fake, "gemini-test", nil))

	_, err := s.Summarize(context.Background(), params(domain.FormProse), "text")
	if !domain.IsKind(err, domain.ErrSummarization) || !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary summarization error, got %v", err)
	}
	if domain.UserMessage(err) != "Error generating summary." {
		t.Fatalf("unexpected user message %q", domain.UserMessage(err))
	}
	if fake.calls != 1 {
		t.Fatalf("expected no automatic retry, got %d calls", fake.calls)
	}
}

func TestSummarizeBlockedPrompt(t *testing.T) {
	fake := &generatorFake{resp: &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}}
	s := NewSummarizer(newClient(fake, "", nil))

	_, err := s.Summarize(context.Background(), params(domain.FormProse), "text")
	var blocked *BlockedError
	if !errors.As(err, &blocked) || !domain.IsKind(err, domain.ErrSummarization) {
		t.Fatalf("expected blocked summarization error, got %v", err)
	}
	if !strings.Contains(domain.UserMessage(err), "safety") {
		t.Fatalf("unexpected user message %q", domain.UserMessage(err))
	}
}

func TestSummarizeEmptyOutput(t *testing.T) {
	s := NewSummarizer(newClient(&generatorFake{resp: textResponse("   ")}, "", nil))
	_, err := s.Summarize(context.Background(), params(domain.FormProse), "text")
	if !domain.IsKind(err, domain.ErrSummarization) {
		t.Fatalf("expected summarization error, got %v", err)
	}
}

func TestTranscribeSendsAudioInline(t *testing.T) {
	fake := &generatorFake{resp: textResponse(" hello world ")}
	tr := NewTranscriber(newClient(fake, "", nil))

	audio := []byte("RIFF....WAVE")
	got, err := tr.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "hello world" {
		t.Fatalf("unexpected transcript %q", got)
	}
	parts := fake.contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "audio/wav" {
		t.Fatalf("expected inline wav part, got %+v", parts)
	}
	if string(parts[1].InlineData.Data) != string(audio) {
		t.Fatalf("audio bytes were not forwarded")
	}
}

func TestTranscribeFailureKinds(t *testing.T) {
	cases := []struct {
		name string
		fake *generatorFake
		kind error
	}{
		{"no speech", &generatorFake{resp: textResponse("NO_SPEECH")}, domain.ErrAudioUnintelligible},
		{"rejected audio", &generatorFake{err: genai.APIError{Code: http.StatusBadRequest}}, domain.ErrAudioUnintelligible},
		{"outage", &generatorFake{err: genai.APIError{Code: http.StatusBadGateway}}, domain.ErrTranscriptionUnavailable},
		{"network", &generatorFake{err: errors.New("dial tcp: connection refused")}, domain.ErrTranscriptionUnavailable},
	}
	for _, tc := range cases {
		_, err := NewTranscriber(newClient(tc.fake, "", nil)).Transcribe(context.Background(), []byte("RIFF"))
		if !domain.IsKind(err, tc.kind) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.kind, err)
		}
	}
}

func TestOpenBreakerSkipsProvider(t *testing.T) {
	exec := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  1,
		BreakerFailureRatio: 0.5,
	})
	fake := &generatorFake{err: genai.APIError{Code: http.StatusInternalServerError}}
	s := NewSummarizer(newClient(fake, "", exec))

	_, _ = s.Summarize(context.Background(), params(domain.FormProse), "text")
	_, err := s.Summarize(context.Background(), params(domain.FormProse), "text")
	if !resilience.IsCircuitOpen(err) || !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("provider must not be called while the breaker is open, got %d calls", fake.calls)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestClientTalksToConfiguredEndpoint(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"A short summary."}]}}]}`))
	}))
	defer srv.Close()

	client, err := New(context.Background(), Config{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := NewSummarizer(client).Summarize(context.Background(), params(domain.FormProse), "text")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "A short summary." {
		t.Fatalf("unexpected summary %q", got)
	}
	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
}
