package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"vidsight-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}
	s.registerTools()
	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_youtube_metadata",
		mcp.WithDescription("Fetch YouTube video metadata: title, channel, duration, publication date, view and like counts."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("analyze_youtube_video",
		mcp.WithDescription("Run the full analysis pipeline on a YouTube video: transcript and comment extraction, per-track summaries, synthesized insights, a critical thinking assessment against eight standards, and prioritized follow-up questions. Calls paid LLM APIs; a typical run takes a minute or more."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("Output format: markdown (default) or json"),
		),
	), s.handleAnalyze)
}

// handleGetMetadata implements the get_youtube_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	metadata, err := s.app.Metadata(ctx, url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Title: %s\n", metadata.Title))
	buf.WriteString(fmt.Sprintf("Channel: %s\n", metadata.Channel))
	if !metadata.PublishedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("Published: %s\n", metadata.PublishedAt.Format("2006-01-02")))
	}
	buf.WriteString(fmt.Sprintf("Duration: %.0f seconds\n", metadata.Duration))
	buf.WriteString(fmt.Sprintf("Views: %d\n", metadata.ViewCount))
	buf.WriteString(fmt.Sprintf("Likes: %d\n", metadata.LikeCount))
	buf.WriteString(fmt.Sprintf("URL: %s\n", metadata.URL))

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// handleAnalyze implements the analyze_youtube_video tool
func (s *MCPServer) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	format := request.GetString("format", FormatMarkdown)
	if format != FormatMarkdown && format != FormatJSON {
		return mcp.NewToolResultError("format must be markdown or json"), nil
	}

	result, err := s.app.Analyze(ctx, url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("analysis failed", err), nil
	}

	output, err := s.app.Render(result, format)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("rendering failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(output)},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}
