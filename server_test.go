package proativo

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gtaquino-automatelabs/proativo-sub001/config"
)

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestNewServerRegistersTools(t *testing.T) {
	s, err := NewServer("proativo", config.Default(), WithProvider(&stubProvider{reply: validReply}))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if s == nil {
		t.Fatal("expected a server")
	}
}

func TestChatToolHandler(t *testing.T) {
	client := newTestClient(t, &stubProvider{reply: validReply})
	handler := handleChat(client)

	res, err := handler(context.Background(), toolRequest(map[string]any{
		"query":      "What is the status of TR-01?",
		"confidence": 0.9,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var result AnswerResult
	if uerr := json.Unmarshal([]byte(resultText(t, res)), &result); uerr != nil {
		t.Fatalf("result is not valid JSON: %v", uerr)
	}
	if result.Text != validReply {
		t.Errorf("text = %q", result.Text)
	}
}

func TestChatToolHandlerRequiresQuery(t *testing.T) {
	client := newTestClient(t, &stubProvider{reply: validReply})
	handler := handleChat(client)

	res, err := handler(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("missing query must produce a tool error")
	}
}

func TestSessionToolHandlers(t *testing.T) {
	client := newTestClient(t, &stubProvider{reply: validReply})

	res, err := handleNewSession(client)(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("new-session failed: %v", err)
	}
	var created struct {
		ID string `json:"session_id"`
	}
	if uerr := json.Unmarshal([]byte(resultText(t, res)), &created); uerr != nil {
		t.Fatalf("session is not valid JSON: %v", uerr)
	}
	if created.ID == "" {
		t.Fatal("new session must carry an id")
	}

	res, err = handleListSessions(client)(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("list-sessions failed: %v", err)
	}
	if !strings.Contains(resultText(t, res), created.ID) {
		t.Error("listing must include the created session")
	}

	res, err = handleDeleteSession(client)(context.Background(), toolRequest(map[string]any{"session_id": created.ID}))
	if err != nil {
		t.Fatalf("delete-session failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	res, err = handleDeleteSession(client)(context.Background(), toolRequest(map[string]any{"session_id": created.ID}))
	if err != nil {
		t.Fatalf("second delete-session failed: %v", err)
	}
	if !res.IsError {
		t.Error("deleting a missing session must produce a tool error")
	}
}

func TestInvalidateToolRequiresCriteria(t *testing.T) {
	client := newTestClient(t, &stubProvider{reply: validReply})
	res, err := handleInvalidate(client)(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("invalidate-cache failed: %v", err)
	}
	if !res.IsError {
		t.Error("invalidation without criteria must produce a tool error")
	}
}
