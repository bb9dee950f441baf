package proativo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gtaquino-automatelabs/proativo-sub001/config"
)

// NewServer builds an MCP server exposing the answer core: the chat tool
// plus cache and fallback administration tools.
func NewServer(serverName string, cfg *config.Config, opts ...Option) (*server.MCPServer, error) {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create answer client failed, err: %w", err)
	}

	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithInstructions("Maintenance-data assistant: answers questions about equipment status, maintenance, failures and costs, with response caching and safe fallbacks"),
	)

	s.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Answer a question about maintenance data, using the response cache and falling back to safe templated answers when generation fails"),
			mcp.WithString("query", mcp.Required(), mcp.Description("The user question")),
			mcp.WithString("session_id", mcp.Description("Chat session to append the exchange to")),
			mcp.WithNumber("confidence", mcp.Description("Host-supplied confidence score for the answer; omit to let the core estimate one")),
		),
		handleChat(client),
	)

	s.AddTool(
		mcp.NewTool("cache-metrics",
			mcp.WithDescription("Report cache hit/miss rates, size, evictions and memory estimate"),
		),
		handleCacheMetrics(client),
	)

	s.AddTool(
		mcp.NewTool("fallback-metrics",
			mcp.WithDescription("Report fallback activations by trigger and strategy"),
		),
		handleFallbackMetrics(client),
	)

	s.AddTool(
		mcp.NewTool("cache-info",
			mcp.WithDescription("Inspect the cache entry stored for a query, if any"),
			mcp.WithString("query", mcp.Required(), mcp.Description("The original query text")),
		),
		handleCacheInfo(client),
	)

	s.AddTool(
		mcp.NewTool("invalidate-cache",
			mcp.WithDescription("Remove cache entries by query substring, tags or age; criteria are OR-combined"),
			mcp.WithString("pattern", mcp.Description("Case-insensitive substring of the original query")),
			mcp.WithArray("tags", mcp.Description("Entry tags; any match invalidates"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithNumber("older_than_hours", mcp.Description("Invalidate entries created more than this many hours ago")),
		),
		handleInvalidate(client),
	)

	s.AddTool(
		mcp.NewTool("clear-cache",
			mcp.WithDescription("Remove every cached response"),
		),
		handleClear(client),
	)

	s.AddTool(
		mcp.NewTool("configure-cache",
			mcp.WithDescription("Adjust cache limits at runtime; omitted fields keep their current value"),
			mcp.WithNumber("max_size", mcp.Description("Maximum number of cached entries")),
			mcp.WithNumber("base_ttl_seconds", mcp.Description("Base TTL in seconds used by the TTL formula")),
			mcp.WithNumber("similarity_threshold", mcp.Description("Similarity threshold in (0, 1] for near-match lookups")),
		),
		handleConfigure(client),
	)

	s.AddTool(
		mcp.NewTool("new-session",
			mcp.WithDescription("Create a chat session and return its id"),
		),
		handleNewSession(client),
	)

	s.AddTool(
		mcp.NewTool("list-sessions",
			mcp.WithDescription("List chat sessions, most recent first"),
		),
		handleListSessions(client),
	)

	s.AddTool(
		mcp.NewTool("delete-session",
			mcp.WithDescription("Delete a chat session and its history"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to delete")),
		),
		handleDeleteSession(client),
	)

	return s, nil
}

func handleChat(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		req := NewAnswerRequest(query)
		req.SessionID = request.GetString("session_id", "")
		req.Confidence = request.GetFloat("confidence", -1)

		result, err := client.Answer(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleCacheMetrics(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(client.Metrics().Cache)
	}
}

func handleFallbackMetrics(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(client.Metrics().Fallback)
	}
}

func handleCacheInfo(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		info, ok := client.CacheInfo(query, nil)
		if !ok {
			return mcp.NewToolResultText("no cache entry for this query"), nil
		}
		return jsonResult(info)
	}
}

func handleInvalidate(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pattern := request.GetString("pattern", "")
		tags := request.GetStringSlice("tags", nil)
		olderThan := request.GetFloat("older_than_hours", 0)
		if pattern == "" && len(tags) == 0 && olderThan <= 0 {
			return mcp.NewToolResultError("at least one of pattern, tags or older_than_hours is required"), nil
		}
		removed := client.Invalidate(pattern, tags, olderThan)
		return mcp.NewToolResultText(fmt.Sprintf("invalidated %d entries", removed)), nil
	}
}

func handleClear(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client.ClearCache()
		return mcp.NewToolResultText("cache cleared"), nil
	}
}

func handleConfigure(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		maxSize := request.GetInt("max_size", 0)
		baseTTL := request.GetInt("base_ttl_seconds", 0)
		threshold := request.GetFloat("similarity_threshold", 0)
		if threshold > 1 {
			return mcp.NewToolResultError("similarity_threshold must be in (0, 1]"), nil
		}
		client.Configure(maxSize, baseTTL, threshold)
		return mcp.NewToolResultText("cache configuration updated"), nil
	}
}

func handleNewSession(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(client.Sessions().Create())
	}
}

func handleListSessions(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessions := client.Sessions().List()
		views := make([]map[string]any, 0, len(sessions))
		for _, s := range sessions {
			views = append(views, map[string]any{
				"session_id": s.ID,
				"created_at": s.CreatedAt,
				"messages":   len(s.Messages),
			})
		}
		return jsonResult(views)
	}
}

func handleDeleteSession(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !client.Sessions().Delete(id) {
			return mcp.NewToolResultError("no such session"), nil
		}
		return mcp.NewToolResultText("session deleted"), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
