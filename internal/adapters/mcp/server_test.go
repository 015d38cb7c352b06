package mcpadapter

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

type summarizerFake struct {
	result domain.SummaryResult
	err    error
	req    domain.SubmissionRequest
	calls  int
}

func (f *summarizerFake) Summarize(_ context.Context, req domain.SubmissionRequest) (domain.SummaryResult, error) {
	f.calls++
	f.req = req
	return f.result, f.err
}

type requestIDKey struct{}

// contextHandler records the request id carried by each log call's context.
type contextHandler struct {
	ids []string
}

func (h *contextHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *contextHandler) Handle(ctx context.Context, _ slog.Record) error {
	id, _ := ctx.Value(requestIDKey{}).(string)
	h.ids = append(h.ids, id)
	return nil
}

func (h *contextHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *contextHandler) WithGroup(string) slog.Handler { return h }

func newTestServer(fake *summarizerFake) *Server {
	return NewServer(fake, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected a single content item, got %+v", res)
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestMCPServerRegistersTools(t *testing.T) {
	srv := newTestServer(&summarizerFake{}).MCPServer("summarizer", "test")

	for _, name := range []string{ToolSummarizeText, ToolSummarizeURL} {
		tool := srv.GetTool(name)
		if tool == nil {
			t.Fatalf("tool %s not registered", name)
		}
		for _, prop := range []string{"form", "length", "language", "granularity"} {
			if _, ok := tool.Tool.InputSchema.Properties[prop]; !ok {
				t.Fatalf("%s: missing property %s", name, prop)
			}
		}
	}
	if !slices.Contains(srv.GetTool(ToolSummarizeText).Tool.InputSchema.Required, "text") {
		t.Fatalf("text must be required")
	}
	if !slices.Contains(srv.GetTool(ToolSummarizeURL).Tool.InputSchema.Required, "url") {
		t.Fatalf("url must be required")
	}
}

func TestSummarizeTextToolAppliesDefaults(t *testing.T) {
	fake := &summarizerFake{result: domain.SummaryResult{Summary: "short"}}
	s := newTestServer(fake)

	res, err := s.handleSummarizeText(context.Background(), callRequest(ToolSummarizeText, map[string]any{
		"text": "A long article.",
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError || resultText(t, res) != "short" {
		t.Fatalf("unexpected result %+v", res)
	}
	want := domain.SubmissionRequest{
		Kind: domain.InputText,
		SummaryParams: domain.SummaryParams{
			Form:        domain.FormProse,
			Length:      defaultLength,
			Language:    "English",
			Granularity: domain.GranularityGeneral,
		},
		Text: "A long article.",
	}
	if fake.req != want {
		t.Fatalf("unexpected request %+v", fake.req)
	}
}

func TestSummarizeURLToolPassesOptions(t *testing.T) {
	fake := &summarizerFake{result: domain.SummaryResult{Summary: "* one\n* two"}}
	s := newTestServer(fake)

	res, err := s.handleSummarizeURL(context.Background(), callRequest(ToolSummarizeURL, map[string]any{
		"url":         "https://example.com/post",
		"form":        "bullet",
		"length":      float64(2),
		"language":    "German",
		"granularity": "detailed",
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error %q", resultText(t, res))
	}
	if fake.req.Kind != domain.InputURL || fake.req.URL != "https://example.com/post" {
		t.Fatalf("unexpected request %+v", fake.req)
	}
	if fake.req.Form != domain.FormBullet || fake.req.Length != 2 || fake.req.Language != "German" || fake.req.Granularity != domain.GranularityDetailed {
		t.Fatalf("options not forwarded: %+v", fake.req.SummaryParams)
	}
}

func TestToolMissingRequiredArgument(t *testing.T) {
	fake := &summarizerFake{}
	s := newTestServer(fake)

	res, err := s.handleSummarizeURL(context.Background(), callRequest(ToolSummarizeURL, map[string]any{}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error result")
	}
	if fake.calls != 0 {
		t.Fatalf("summarizer must not be called")
	}
}

func TestToolReportsUserMessage(t *testing.T) {
	fake := &summarizerFake{err: domain.NewError(domain.ErrFetch, "Error fetching URL: status code 404.")}
	s := newTestServer(fake)

	res, err := s.handleSummarizeURL(context.Background(), callRequest(ToolSummarizeURL, map[string]any{
		"url": "https://example.com/missing",
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError || resultText(t, res) != "Error fetching URL: status code 404." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestToolLogsCarryRequestContext(t *testing.T) {
	handler := &contextHandler{}
	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-7")

	ok := NewServer(&summarizerFake{result: domain.SummaryResult{Summary: "fine"}}, slog.New(handler))
	if _, err := ok.handleSummarizeText(ctx, callRequest(ToolSummarizeText, map[string]any{"text": "Body."})); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	failing := NewServer(&summarizerFake{err: domain.NewError(domain.ErrFetch, "fetch failed")}, slog.New(handler))
	if _, err := failing.handleSummarizeURL(ctx, callRequest(ToolSummarizeURL, map[string]any{"url": "https://example.com"})); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if !slices.Equal(handler.ids, []string{"req-7", "req-7"}) {
		t.Fatalf("log records lost the request context: %q", handler.ids)
	}
}
