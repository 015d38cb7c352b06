package mcpadapter

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/summarizer/internal/core/domain"
	"github.com/kirillkom/summarizer/internal/core/ports"
)

const (
	ToolSummarizeText = "summarize_text"
	ToolSummarizeURL  = "summarize_url"

	defaultLength = 5
)

type Server struct {
	summarizer ports.SubmissionSummarizer
	logger     *slog.Logger
}

func NewServer(summarizer ports.SubmissionSummarizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{summarizer: summarizer, logger: logger}
}

// MCPServer builds the tool server. Both tools share the summary options.
func (s *Server) MCPServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	textTool := mcp.NewTool(ToolSummarizeText,
		append([]mcp.ToolOption{
			mcp.WithDescription("Summarize a block of text. A text that is only a link is fetched and summarized as a web page."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to summarize, up to 4096 characters.")),
		}, summaryOptions()...)...,
	)
	urlTool := mcp.NewTool(ToolSummarizeURL,
		append([]mcp.ToolOption{
			mcp.WithDescription("Fetch a web page or feed and summarize its visible text."),
			mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http or https URL.")),
		}, summaryOptions()...)...,
	)

	srv.AddTool(textTool, s.handleSummarizeText)
	srv.AddTool(urlTool, s.handleSummarizeURL)
	return srv
}

func summaryOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("form",
			mcp.Description("Summary shape."),
			mcp.Enum(string(domain.FormProse), string(domain.FormBullet)),
			mcp.DefaultString(string(domain.FormProse)),
		),
		mcp.WithNumber("length",
			mcp.Description("Number of sentences or bullet points."),
			mcp.Min(domain.MinSummaryLength),
			mcp.Max(domain.MaxSummaryLength),
			mcp.DefaultNumber(defaultLength),
		),
		mcp.WithString("language",
			mcp.Description("Output language. \"System\" keeps the language of the source."),
			mcp.Enum(domain.SupportedLanguages()...),
			mcp.DefaultString("English"),
		),
		mcp.WithString("granularity",
			mcp.Description("Level of detail."),
			mcp.Enum(string(domain.GranularityGeneral), string(domain.GranularityDetailed)),
			mcp.DefaultString(string(domain.GranularityGeneral)),
		),
	}
}

func (s *Server) handleSummarizeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := domain.SubmissionRequest{Kind: domain.InputText, SummaryParams: summaryParams(request), Text: text}
	return s.summarize(ctx, ToolSummarizeText, req), nil
}

func (s *Server) handleSummarizeURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := domain.SubmissionRequest{Kind: domain.InputURL, SummaryParams: summaryParams(request), URL: rawURL}
	return s.summarize(ctx, ToolSummarizeURL, req), nil
}

func (s *Server) summarize(ctx context.Context, tool string, req domain.SubmissionRequest) *mcp.CallToolResult {
	result, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "mcp_tool_failed", "tool", tool, "error", err)
		return mcp.NewToolResultError(domain.UserMessage(err))
	}
	s.logger.InfoContext(ctx, "mcp_tool_completed", "tool", tool, "summary_chars", len([]rune(result.Summary)))
	return mcp.NewToolResultText(result.Summary)
}

func summaryParams(request mcp.CallToolRequest) domain.SummaryParams {
	return domain.SummaryParams{
		Form:        domain.OutputForm(request.GetString("form", string(domain.FormProse))),
		Length:      request.GetInt("length", defaultLength),
		Language:    request.GetString("language", "English"),
		Granularity: domain.Granularity(request.GetString("granularity", string(domain.GranularityGeneral))),
	}
}
